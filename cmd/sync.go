package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one directory sync pass",
	Long: `Run the full pipeline once: check the source page for a new
publication, and if the published date is newer than the stored
watermark, download every linked spreadsheet and insert unseen branches.

Use --force to process the spreadsheets regardless of the watermark.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "sync"))

		force, _ := cmd.Flags().GetBool("force")

		p, st, err := buildPipeline(cfg, force)
		if err != nil {
			return eris.Wrap(err, "sync: build pipeline")
		}
		defer st.Close() //nolint:errcheck

		log.Info("starting sync", zap.Bool("force", force))

		res, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "sync")
		}

		fmt.Printf("Sync complete: %d files (%d failed), %d inserted, %d skipped, %d failed records\n",
			res.Files, res.FilesFailed, res.Inserted, res.Skipped, res.Failed)
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force", false, "process spreadsheets even when the watermark is current")
	rootCmd.AddCommand(syncCmd)
}
