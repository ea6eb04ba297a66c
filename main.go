package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/platewatch/platewatch-go/cmd"
	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}

	if settings.Main.Log.Enabled {
		closeLog, err := logging.InitFile(level, settings.Main.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error initializing file logging: %v\n", err)
			logging.Init(level)
		} else {
			defer func() { _ = closeLog() }()
		}
	} else {
		logging.Init(level)
	}

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}
