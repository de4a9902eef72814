package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/erfanjahi0/pulsechat/pkg/config"
)

func TestGoodNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		config.DefaultConfig(),
		{},
		{Log: config.LogConfig{Path: filepath.Join(t.TempDir(), "logfile.txt")}},
	} {
		_, f, err := NewLogger(c)
		if err != nil {
			t.Errorf("NewLogger(%v) => _, _, %v, want _, _, nil", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestBadNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		nil,
		{Log: config.LogConfig{Path: "\x00"}},
	} {
		_, f, err := NewLogger(c)
		if err == nil {
			t.Errorf("NewLogger(%v) => _, _, nil, want _, _, %v", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.log")
	cfg := &config.Config{Log: config.LogConfig{Format: "json", Path: path}}
	logger, f, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger => %v", err)
	}
	logger.Info("handle reserved", "handle", "alice")
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	bts, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(bts), &line); err != nil {
		t.Fatalf("log line is not json: %q: %v", bts, err)
	}
	if line["handle"] != "alice" || line["msg"] != "handle reserved" {
		t.Errorf("unexpected log line: %v", line)
	}
}
