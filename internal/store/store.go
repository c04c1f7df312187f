package store

import (
	"context"
	"time"

	"github.com/bankfeeds/branchsync/internal/model"
)

// Store defines the persistence interface for the branch directory and
// the single status document. At most one branch document exists per
// IFSC; the invariant is enforced by the BranchExists/InsertBranch pair
// under the single sequential writer this job runs as.
type Store interface {
	// Branches
	BranchExists(ctx context.Context, ifsc string) (bool, error)
	InsertBranch(ctx context.Context, b model.Branch) error

	// Status document
	Status(ctx context.Context) (*model.SyncStatus, error)
	SetRunState(ctx context.Context, state model.RunState) error
	Watermark(ctx context.Context) (time.Time, error)
	SetWatermark(ctx context.Context, date time.Time) error

	// Lifecycle
	Close() error
}
