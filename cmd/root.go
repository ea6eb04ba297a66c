// Package cmd builds the platewatch command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/platewatch/platewatch-go/cmd/plates"
	"github.com/platewatch/platewatch-go/cmd/realtime"
	"github.com/platewatch/platewatch-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "platewatch",
		Short: "License plate recognition for Frigate NVR events",
	}

	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")

	rootCmd.AddCommand(
		realtime.Command(settings),
		plates.Command(settings),
	)

	return rootCmd
}
