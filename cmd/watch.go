package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync on a recurring schedule",
	Long: `Run one sync pass immediately, then re-run on the configured
interval (default every 30 days) until interrupted.

A tick that fires while the previous run is still in flight is skipped;
there is no catch-up for missed runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "watch"))

		p, st, err := buildPipeline(cfg, false)
		if err != nil {
			return eris.Wrap(err, "watch: build pipeline")
		}
		defer st.Close() //nolint:errcheck

		var inFlight atomic.Bool
		runOnce := func() {
			if !inFlight.CompareAndSwap(false, true) {
				log.Warn("previous run still in flight, skipping tick")
				return
			}
			defer inFlight.Store(false)

			res, err := p.Run(ctx)
			if err != nil {
				log.Error("run aborted", zap.Error(err))
				return
			}
			log.Info("run complete",
				zap.Int("files", res.Files),
				zap.Int("files_failed", res.FilesFailed),
				zap.Int("inserted", res.Inserted),
				zap.Int("skipped", res.Skipped),
				zap.Int("failed", res.Failed),
			)
		}

		interval := cfg.Sync.Interval()
		log.Info("starting watch", zap.Duration("interval", interval))

		runOnce()

		c := cron.New()
		if err := c.AddFunc(fmt.Sprintf("@every %s", interval), runOnce); err != nil {
			return eris.Wrap(err, "watch: schedule")
		}
		c.Start()
		defer c.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sig:
			log.Info("shutting down", zap.String("signal", s.String()))
		case <-ctx.Done():
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
