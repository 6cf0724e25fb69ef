package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/autocrew/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.StartRun(ctx, "run1", "write a haiku"))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run1", runs[0].ID)
	assert.Equal(t, "write a haiku", runs[0].Task)
	assert.Equal(t, "running", runs[0].Status)

	require.NoError(t, s.FinishRun(ctx, "run1", "done", "completed", 3, "haiku delivered"))

	runs, err = s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "done", runs[0].Status)
	assert.Equal(t, "completed", runs[0].Reason)
	assert.Equal(t, 3, runs[0].Turns)
	assert.Equal(t, "haiku delivered", runs[0].Summary)
	assert.False(t, runs[0].FinishedAt.IsZero())
}

func TestStartRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.StartRun(ctx, "run1", "first"))
	require.NoError(t, s.StartRun(ctx, "run1", "second"))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "second", runs[0].Task)
}

func TestListRunsLimitAndOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.StartRun(ctx, id, "task "+id))
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
}

func TestRecorderArchivesMessages(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.StartRun(ctx, "run1", "task"))

	rec := s.Recorder("run1")
	now := time.Now().UTC()
	require.NoError(t, rec.Record(core.Message{ID: 1, Sender: "system", Recipient: "all", Body: "TASK: task", Timestamp: now}))
	require.NoError(t, rec.Record(core.Message{ID: 2, Sender: "orchestrator", Recipient: "writer", Body: "draft it", Timestamp: now}))
	// Replays of the same sequence are ignored, not duplicated.
	require.NoError(t, rec.Record(core.Message{ID: 2, Sender: "orchestrator", Recipient: "writer", Body: "draft it", Timestamp: now}))

	msgs, err := s.Messages(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, "system", msgs[0].Sender)
	assert.Equal(t, "writer", msgs[1].Recipient)
	assert.Equal(t, "draft it", msgs[1].Body)
}

func TestMessagesUnknownRunIsEmpty(t *testing.T) {
	s := openTestStore(t)
	msgs, err := s.Messages(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
