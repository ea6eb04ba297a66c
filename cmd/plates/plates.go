// Package plates implements the recorded-plates listing subcommand.
package plates

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/datastore"
)

// Command creates the plates subcommand, listing the most recently recorded
// plates from the local database.
func Command(settings *conf.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "plates",
		Short: "List recently recorded license plates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPlates(settings, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Maximum number of records to list")

	return cmd
}

func listPlates(settings *conf.Settings, limit int) error {
	store, err := datastore.New(settings, nil)
	if err != nil {
		return err
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.RecentPlates(limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPLATE\tSCORE\tCAMERA\tEVENT")
	for i := range records {
		r := &records[i]
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			r.DetectionTime.Format("2006-01-02 15:04:05"),
			r.PlateNumber,
			r.Score,
			r.CameraName,
			r.FrigateEvent)
	}
	return w.Flush()
}
