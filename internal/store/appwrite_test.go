package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeeds/branchsync/internal/model"
	"github.com/bankfeeds/branchsync/pkg/appwrite"
)

func newTestAppwrite(t *testing.T, handler http.Handler) *AppwriteStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := appwrite.NewClient(srv.URL, "proj", "key")
	return NewAppwrite(client, "db1", "col1", "status-doc")
}

func TestAppwriteBranchExists(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries := r.URL.Query()["queries[]"]
		require.Len(t, queries, 1)
		assert.Contains(t, queries[0], "IFSC")
		assert.Contains(t, queries[0], "SBIN0000001")

		w.Write([]byte(`{"total":1,"documents":[{"$id":"d1","IFSC":"SBIN0000001"}]}`))
	}))

	exists, err := s.BranchExists(context.Background(), "SBIN0000001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAppwriteBranchExists_NotFound(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":0,"documents":[]}`))
	}))

	exists, err := s.BranchExists(context.Background(), "SBIN0000002")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAppwriteInsertBranch(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload struct {
			DocumentID string            `json:"documentId"`
			Data       map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "unique()", payload.DocumentID)
		assert.Equal(t, "SBIN0000001", payload.Data["IFSC"])
		assert.Equal(t, "022", payload.Data["STD_CODE"])

		// All nine fields travel, empty ones included.
		assert.Len(t, payload.Data, 9)
		assert.Equal(t, "", payload.Data["CITY2"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"$id":"new-doc"}`))
	}))

	err := s.InsertBranch(context.Background(), model.Branch{IFSC: "SBIN0000001", STDCode: "022"})
	require.NoError(t, err)
}

func TestAppwriteStatusRoundTrip(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db1/collections/col1/documents/status-doc", r.URL.Path)
		w.Write([]byte(`{"$id":"status-doc","status":"idle","last_updated":"2024-01-05T10:00:00Z","last_update_date":"2023-12-01T00:00:00Z"}`))
	}))

	st, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RunStateIdle, st.State)
	assert.Equal(t, time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC), st.LastUpdated)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), st.LastUpdateDate)
}

func TestAppwriteSetRunState(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var payload struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "running", payload.Data["status"])
		assert.NotEmpty(t, payload.Data["last_updated"])

		w.Write([]byte(`{"$id":"status-doc","status":"running"}`))
	}))

	require.NoError(t, s.SetRunState(context.Background(), model.RunStateRunning))
}

func TestAppwriteSetWatermark(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var payload struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2024-01-05T00:00:00Z", payload.Data["last_update_date"])

		w.Write([]byte(`{"$id":"status-doc"}`))
	}))

	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetWatermark(context.Background(), date))
}

func TestAppwriteWatermark_Missing(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"$id":"status-doc","status":"idle"}`))
	}))

	wm, err := s.Watermark(context.Background())
	require.NoError(t, err)
	assert.True(t, wm.IsZero())
}

func TestAppwriteStoreError(t *testing.T) {
	s := newTestAppwrite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"down"}`))
	}))

	_, err := s.BranchExists(context.Background(), "SBIN0000001")
	require.Error(t, err)

	_, err = s.Status(context.Background())
	require.Error(t, err)
}
