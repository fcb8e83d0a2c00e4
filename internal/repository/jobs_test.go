package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedocs/termsheet-extractor/constants"
)

func newTestStore(t *testing.T) *SQLJobStore {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: ":memory:", DialTimeout: time.Second}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewJobStore(db, testLogger())
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	job := &Job{Filename: "sheet.docx", FileExt: "docx", Format: "DOCX"}
	require.NoError(t, store.StartJob(ctx, job))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", job.ID.String())

	err := store.FinishJob(ctx, job.ID, constants.JobStatusSucceeded, constants.ProcessRuleBased, `{"ok":true}`, "")
	require.NoError(t, err)

	jobs, err := store.ListJobs(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	got := jobs[0]
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "sheet.docx", got.Filename)
	assert.Equal(t, constants.JobStatusSucceeded, got.Status)
	assert.Equal(t, constants.ProcessRuleBased, got.Process)
	assert.Equal(t, `{"ok":true}`, got.ResultJSON)
	assert.NotNil(t, got.FinishedAt)
}

func TestJobFailureKeepsErrorMessage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	job := &Job{Filename: "chat.txt", FileExt: "txt", Format: "TXT"}
	require.NoError(t, store.StartJob(ctx, job))
	require.NoError(t, store.FinishJob(ctx, job.ID, constants.JobStatusFailed, constants.ProcessNER, "", "model load failed"))

	jobs, err := store.ListJobs(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.JobStatusFailed, jobs[0].Status)
	assert.Equal(t, "model load failed", jobs[0].ErrorMessage)
}

func TestListJobsSinceFiltersOldRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := &Job{Filename: "old.docx", FileExt: "docx", Format: "DOCX", StartedAt: time.Now().UTC().Add(-48 * time.Hour)}
	require.NoError(t, store.StartJob(ctx, old))
	recent := &Job{Filename: "recent.docx", FileExt: "docx", Format: "DOCX"}
	require.NoError(t, store.StartJob(ctx, recent))

	jobs, err := store.ListJobs(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "recent.docx", jobs[0].Filename)
}
