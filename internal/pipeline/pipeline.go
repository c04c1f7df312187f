// Package pipeline runs one full directory sync: freshness check,
// spreadsheet download and parse, deduplicated ingestion, status
// bookkeeping, and operator notifications.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bankfeeds/branchsync/internal/fetcher"
	"github.com/bankfeeds/branchsync/internal/ingest"
	"github.com/bankfeeds/branchsync/internal/model"
	"github.com/bankfeeds/branchsync/internal/notify"
	"github.com/bankfeeds/branchsync/internal/source"
	"github.com/bankfeeds/branchsync/internal/store"
)

// Options configures a pipeline run.
type Options struct {
	PageURL  string
	FilePace time.Duration // pause between spreadsheet downloads
	Force    bool          // ignore the watermark comparison
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	UpdateDate  time.Time
	Files       int
	FilesFailed int
	Inserted    int
	Skipped     int
	Failed      int
}

// Pipeline holds the injected collaborators for a sync run.
type Pipeline struct {
	store    store.Store
	fetcher  fetcher.Fetcher
	scanner  *source.Scanner
	engine   *ingest.Engine
	notifier notify.Notifier
	opts     Options
}

// New creates a Pipeline with explicit collaborators.
func New(s store.Store, f fetcher.Fetcher, sc *source.Scanner, n notify.Notifier, opts Options) *Pipeline {
	return &Pipeline{
		store:    s,
		fetcher:  f,
		scanner:  sc,
		engine:   ingest.NewEngine(s),
		notifier: n,
		opts:     opts,
	}
}

// Run executes one sequential sync pass. Nothing inside it is fatal:
// every failure degrades to a logged skip, and the run always ends with
// the status document back at idle. The returned error is reserved for
// context cancellation.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	log := zap.L().With(zap.String("component", "pipeline"))
	res := &RunResult{}

	if err := p.store.SetRunState(ctx, model.RunStateRunning); err != nil {
		log.Error("failed to mark run state running", zap.Error(err))
	}
	p.notifier.Send(ctx, "Directory sync started.")
	defer p.finish(ctx, log)

	updateDate, err := p.scanner.UpdateDate(ctx, p.opts.PageURL)
	switch {
	case errors.Is(err, source.ErrNoFreshnessMarker):
		log.Warn("no freshness marker on source page")
		p.notifier.Send(ctx, "No update marker found on the source page; skipping this run.")
		return res, ctx.Err()
	case err != nil:
		log.Error("freshness check failed", zap.Error(err))
		p.notifier.Send(ctx, "Freshness check failed; skipping this run.")
		return res, ctx.Err()
	}
	res.UpdateDate = updateDate

	watermark, err := p.store.Watermark(ctx)
	if err != nil {
		// Unknown watermark reads as "never synced" so a fresh status
		// document still triggers a full pass.
		log.Error("failed to read watermark", zap.Error(err))
		watermark = time.Time{}
	}

	if !p.opts.Force && !updateDate.After(watermark) {
		log.Info("no new updates",
			zap.Time("update_date", updateDate),
			zap.Time("watermark", watermark),
		)
		p.notifier.Send(ctx, fmt.Sprintf("No new updates as of %s.", time.Now().UTC().Format(time.RFC3339)))
		return res, ctx.Err()
	}

	log.Info("new update found",
		zap.Time("update_date", updateDate),
		zap.Time("watermark", watermark),
	)
	p.notifier.Send(ctx, fmt.Sprintf("New update found: %s", updateDate.Format("January 2, 2006")))

	if err := p.store.SetWatermark(ctx, updateDate); err != nil {
		log.Error("failed to advance watermark", zap.Error(err))
	}

	links, err := p.scanner.SheetLinks(ctx, p.opts.PageURL)
	if err != nil {
		log.Error("failed to extract spreadsheet links", zap.Error(err))
	}
	if len(links) == 0 {
		log.Warn("no spreadsheet links found on source page")
	}

	for i, link := range links {
		if i > 0 {
			if err := p.pace(ctx); err != nil {
				return res, err
			}
		}
		res.Files++

		p.notifier.Send(ctx, fmt.Sprintf("Processing file: %s", link))
		data, err := p.fetcher.DownloadBytes(ctx, link)
		if err != nil {
			log.Error("download failed", zap.String("url", link), zap.Error(err))
			p.notifier.Send(ctx, fmt.Sprintf("Failed to download file: %s", link))
			res.FilesFailed++
			continue
		}

		records, err := fetcher.ParseRecords(data)
		if err != nil {
			log.Error("spreadsheet parse failed", zap.String("url", link), zap.Error(err))
		}

		r := p.engine.Ingest(ctx, records)
		res.Inserted += r.Inserted
		res.Skipped += r.Skipped
		res.Failed += r.Failed

		log.Info("file processed",
			zap.String("url", link),
			zap.Int("inserted", r.Inserted),
			zap.Int("skipped", r.Skipped),
			zap.Int("failed", r.Failed),
		)
		p.notifier.Send(ctx, fmt.Sprintf("Completed processing %s. New records added: %d", link, r.Inserted))
	}

	p.notifier.Send(ctx, "All files processed.")
	return res, ctx.Err()
}

// finish restores the idle state and announces the end of the run.
func (p *Pipeline) finish(ctx context.Context, log *zap.Logger) {
	if err := p.store.SetRunState(ctx, model.RunStateIdle); err != nil {
		log.Error("failed to mark run state idle", zap.Error(err))
	}
	p.notifier.Send(ctx, "Directory sync finished.")
}

// pace sleeps between per-file downloads to throttle the source.
func (p *Pipeline) pace(ctx context.Context) error {
	if p.opts.FilePace <= 0 {
		return nil
	}
	t := time.NewTimer(p.opts.FilePace)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
