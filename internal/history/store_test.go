package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := Run{
		SourcePath: "/invoices/acme-march.pdf",
		Model:      "llama3.2",
		Strategy:   "synonym",
		Status:     StatusOK,
		FieldsJSON: `{"invoice_number":"INV-001"}`,
	}
	require.NoError(t, store.Record(ctx, run))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	require.NotEqual(t, uuid.Nil, got.ID, "ID is assigned on insert")
	require.Equal(t, run.SourcePath, got.SourcePath)
	require.Equal(t, run.Model, got.Model)
	require.Equal(t, run.Strategy, got.Strategy)
	require.Equal(t, StatusOK, got.Status)
	require.Equal(t, run.FieldsJSON, got.FieldsJSON)
	require.Empty(t, got.ErrorText)
	require.WithinDuration(t, time.Now().UTC(), got.CreatedAt, time.Minute)
}

func TestList_NewestFirstAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, Run{
			SourcePath: "a.pdf",
			Model:      "llama3.2",
			Strategy:   "exact",
			Status:     StatusOK,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
}

func TestRecord_FailedRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Run{
		SourcePath: "broken.pdf",
		Model:      "llama3.2",
		Strategy:   "synonym",
		Status:     "MALFORMED_OUTPUT",
		ErrorText:  "model response is not recoverable as JSON",
	}))

	runs, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "MALFORMED_OUTPUT", runs[0].Status)
	require.Empty(t, runs[0].FieldsJSON)
	require.NotEmpty(t, runs[0].ErrorText)
}
