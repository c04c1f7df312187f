package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/bankfeeds/branchsync/internal/model"
	"github.com/bankfeeds/branchsync/pkg/appwrite"
)

// AppwriteStore implements Store against a hosted Appwrite database.
// The status document is pre-provisioned and addressed by a fixed ID.
type AppwriteStore struct {
	client       appwrite.Client
	databaseID   string
	collectionID string
	statusDocID  string
}

// NewAppwrite creates a Store backed by the given Appwrite client.
func NewAppwrite(client appwrite.Client, databaseID, collectionID, statusDocID string) *AppwriteStore {
	return &AppwriteStore{
		client:       client,
		databaseID:   databaseID,
		collectionID: collectionID,
		statusDocID:  statusDocID,
	}
}

func (s *AppwriteStore) BranchExists(ctx context.Context, ifsc string) (bool, error) {
	list, err := s.client.ListDocuments(ctx, s.databaseID, s.collectionID, []string{
		appwrite.EqualQuery("IFSC", ifsc),
	})
	if err != nil {
		return false, eris.Wrapf(err, "store: check branch %s", ifsc)
	}
	return list.Total > 0, nil
}

func (s *AppwriteStore) InsertBranch(ctx context.Context, b model.Branch) error {
	data := make(map[string]any, 9)
	for k, v := range b.Fields() {
		data[k] = v
	}
	if _, err := s.client.CreateDocument(ctx, s.databaseID, s.collectionID, data); err != nil {
		return eris.Wrapf(err, "store: insert branch %s", b.IFSC)
	}
	return nil
}

func (s *AppwriteStore) Status(ctx context.Context) (*model.SyncStatus, error) {
	doc, err := s.client.GetDocument(ctx, s.databaseID, s.collectionID, s.statusDocID)
	if err != nil {
		return nil, eris.Wrap(err, "store: get status document")
	}

	st := &model.SyncStatus{
		State: model.RunState(doc.GetString("status")),
	}
	if t, err := time.Parse(time.RFC3339, doc.GetString("last_updated")); err == nil {
		st.LastUpdated = t
	}
	if t, err := time.Parse(time.RFC3339, doc.GetString("last_update_date")); err == nil {
		st.LastUpdateDate = t
	}
	return st, nil
}

func (s *AppwriteStore) SetRunState(ctx context.Context, state model.RunState) error {
	_, err := s.client.UpdateDocument(ctx, s.databaseID, s.collectionID, s.statusDocID, map[string]any{
		"status":       string(state),
		"last_updated": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return eris.Wrapf(err, "store: set run state %s", state)
	}
	return nil
}

func (s *AppwriteStore) Watermark(ctx context.Context) (time.Time, error) {
	st, err := s.Status(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return st.LastUpdateDate, nil
}

func (s *AppwriteStore) SetWatermark(ctx context.Context, date time.Time) error {
	_, err := s.client.UpdateDocument(ctx, s.databaseID, s.collectionID, s.statusDocID, map[string]any{
		"last_update_date": date.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return eris.Wrap(err, "store: set watermark")
	}
	return nil
}

// Close is a no-op; the Appwrite client holds no pooled resources.
func (s *AppwriteStore) Close() error { return nil }
