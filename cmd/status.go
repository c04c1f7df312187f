package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := buildStore(cfg)
		if err != nil {
			return eris.Wrap(err, "status: build store")
		}
		defer st.Close() //nolint:errcheck

		status, err := st.Status(ctx)
		if err != nil {
			return eris.Wrap(err, "status: read status document")
		}

		fmt.Printf("State:          %s\n", status.State)
		if status.LastUpdated.IsZero() {
			fmt.Println("Last change:    never")
		} else {
			fmt.Printf("Last change:    %s\n", status.LastUpdated.Format(time.RFC3339))
		}
		if status.LastUpdateDate.IsZero() {
			fmt.Println("Source watermark: none")
		} else {
			fmt.Printf("Source watermark: %s\n", status.LastUpdateDate.Format("January 2, 2006"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
