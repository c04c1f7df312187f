// Package ingest deduplicates parsed directory rows against the store
// and inserts the ones not seen before.
package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/bankfeeds/branchsync/internal/model"
	"github.com/bankfeeds/branchsync/internal/store"
)

// Result summarizes one ingested batch.
type Result struct {
	Inserted int
	Skipped  int
	Failed   int
}

// Engine writes new branch records into the store.
type Engine struct {
	store store.Store
}

// NewEngine creates an ingestion engine on the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Ingest coerces each row to a branch record and inserts it unless a
// record with the same IFSC already exists. Per-record failures are
// logged and skipped; the batch always runs to completion. Re-running
// the same batch inserts nothing the second time.
func (e *Engine) Ingest(ctx context.Context, rows []map[string]string) Result {
	log := zap.L().With(zap.String("component", "ingest"))

	var res Result
	for _, row := range rows {
		b := model.BranchFromRow(row)
		if b.IFSC == "" {
			log.Warn("row has no IFSC, skipping", zap.String("bank", b.Bank), zap.String("branch", b.Branch))
			res.Skipped++
			continue
		}

		exists, err := e.store.BranchExists(ctx, b.IFSC)
		if err != nil {
			log.Error("existence check failed, skipping record", zap.String("ifsc", b.IFSC), zap.Error(err))
			res.Failed++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		if err := e.store.InsertBranch(ctx, b); err != nil {
			log.Error("insert failed, skipping record", zap.String("ifsc", b.IFSC), zap.Error(err))
			res.Failed++
			continue
		}
		res.Inserted++
	}

	return res
}
