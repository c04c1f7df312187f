package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeeds/branchsync/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rows() []map[string]string {
	return []map[string]string{
		{"BANK": "State Bank", "IFSC": "SBIN0000001", "BRANCH": "Main"},
		{"BANK": "State Bank", "IFSC": "SBIN0000002", "BRANCH": "Fort"},
		{"BANK": "State Bank", "IFSC": "SBIN0000003", "BRANCH": "Colaba"},
	}
}

func TestIngest(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s)

	res := e.Ingest(context.Background(), rows())
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Failed)
}

func TestIngest_IdempotentRerun(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	first := e.Ingest(ctx, rows())
	assert.Equal(t, 3, first.Inserted)

	second := e.Ingest(ctx, rows())
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Skipped)
}

func TestIngest_MissingFieldStoredEmpty(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	res := e.Ingest(ctx, []map[string]string{
		{"BANK": "State Bank", "IFSC": "SBIN0000009"}, // no PHONE column
	})
	assert.Equal(t, 1, res.Inserted)

	exists, err := s.BranchExists(ctx, "SBIN0000009")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngest_KeylessRowSkipped(t *testing.T) {
	s := newTestStore(t)
	e := NewEngine(s)

	res := e.Ingest(context.Background(), []map[string]string{
		{"BANK": "State Bank", "BRANCH": "No Code"},
		{"BANK": "State Bank", "IFSC": "SBIN0000004"},
	})
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
}

func TestIngest_EmptyBatch(t *testing.T) {
	e := NewEngine(newTestStore(t))

	res := e.Ingest(context.Background(), nil)
	assert.Equal(t, Result{}, res)
}

// failingStore breaks on a chosen IFSC to prove the batch survives
// per-record store failures.
type failingStore struct {
	store.Store
	failOn string
}

func (f *failingStore) BranchExists(ctx context.Context, ifsc string) (bool, error) {
	if ifsc == f.failOn {
		return false, eris.New("store unavailable")
	}
	return f.Store.BranchExists(ctx, ifsc)
}

func TestIngest_RecordFailureContinues(t *testing.T) {
	s := &failingStore{Store: newTestStore(t), failOn: "SBIN0000002"}
	e := NewEngine(s)

	res := e.Ingest(context.Background(), rows())
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Failed)

	exists, err := s.BranchExists(context.Background(), "SBIN0000003")
	require.NoError(t, err)
	assert.True(t, exists)
}
