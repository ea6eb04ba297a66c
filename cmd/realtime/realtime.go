// Package realtime implements the realtime processing subcommand.
package realtime

import (
	"github.com/spf13/cobra"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/service"
)

// Command creates the realtime subcommand, the long-running service mode.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "realtime",
		Short: "Process Frigate detection events in realtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.Run(settings)
		},
	}
}
