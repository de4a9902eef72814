package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Pulse server configuration

# The name of the server.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP API server configuration.
http:
  # Whether the HTTP API server is enabled.
  enabled: {{ .HTTP.Enabled }}

  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The public URL of the HTTP server.
  # Session tokens are issued for this URL.
  public_url: "{{ .HTTP.PublicURL }}"

# The stats server configuration.
stats:
  # Whether the stats server is enabled.
  enabled: {{ .Stats.Enabled }}

  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  # Make sure foreign key support is enabled when using SQLite.
  data_source: "{{ .DB.DataSource }}"

# Handle reservation configuration.
handle:
  # Minimum time between two handle changes of the same account.
  cooldown: "{{ .Handle.Cooldown }}"

  # Upper bound for a single reservation transaction attempt.
  tx_timeout: "{{ .Handle.TxTimeout }}"

  # How many times a reservation is retried after a serialization conflict.
  max_retries: {{ .Handle.MaxRetries }}

  # Glob patterns of handles that cannot be claimed.
  reserved:{{ range .Handle.Reserved }}
    - "{{ . }}"{{ end }}

# Session token configuration.
session:
  # The path to the key used to sign session tokens.
  key_path: "{{ .Session.KeyPath }}"

  # How long a session token stays valid.
  expiry: "{{ .Session.Expiry }}"

# Cron job specs.
jobs:
  reservation_stats: "{{ .Jobs.ReservationStats }}"
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
