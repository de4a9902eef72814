package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/cmd/pulse/cli"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	logr "github.com/erfanjahi0/pulsechat/pkg/log"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

func main() {
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	if len(CommitSHA) >= 7 {
		Version += " (" + CommitSHA[0:7] + ")"
	}

	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			fmt.Fprintf(os.Stderr, "parse config file: %v\n", err)
			return 1
		}
	} else if err := cfg.WriteConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "write default config: %v\n", err)
		return 1
	}

	if err := cfg.ParseEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "parse environment variables: %v\n", err)
		return 1
	}

	ctx = config.WithContext(ctx, cfg)
	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		log.Errorf("failed to create logger: %v", err)
		return 1
	}
	if f != nil {
		defer f.Close() //nolint:errcheck
	}

	// Set global logger
	log.SetDefault(logger)

	// Set the max number of processes to the number of CPUs
	// This is useful when running pulse in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	ctx = log.WithContext(ctx, logger)
	if err := cli.New(Version).ExecuteContext(ctx); err != nil {
		return 1
	}

	return 0
}
