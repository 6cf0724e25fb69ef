package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardAppendAssignsMonotonicIDs(t *testing.T) {
	b := NewBoard()

	m1, err := b.Append("orchestrator", "writer_1", "draft the intro")
	require.NoError(t, err)
	m2, err := b.Append("writer_1", "orchestrator", "done")
	require.NoError(t, err)

	assert.Equal(t, int64(1), m1.ID)
	assert.Equal(t, int64(2), m2.ID)
	assert.Equal(t, int64(2), b.LastID())
	assert.Equal(t, 2, b.Len())
}

func TestBoardVisibility(t *testing.T) {
	b := NewBoard()
	_, err := b.Append(SenderSystem, RecipientAll, "TASK: write a haiku")
	require.NoError(t, err)
	_, err = b.Append("orchestrator", "writer_1", "you are up")
	require.NoError(t, err)

	writer := b.VisibleTo("writer_1", 0)
	require.Len(t, writer, 2)
	assert.Equal(t, "TASK: write a haiku", writer[0].Body)
	assert.Equal(t, "you are up", writer[1].Body)

	// Another named role only sees the broadcast.
	other := b.VisibleTo("reviewer", 0)
	require.Len(t, other, 1)
	assert.Equal(t, RecipientAll, other[0].Recipient)
}

func TestBoardVisibleToAfterID(t *testing.T) {
	b := NewBoard()
	_, _ = b.Append("a", "b", "first")
	_, _ = b.Append("a", "b", "second")
	_, _ = b.Append("a", "b", "third")

	msgs := b.VisibleTo("b", 1)
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Body)
}

func TestBoardRecent(t *testing.T) {
	b := NewBoard()
	for i := 0; i < 5; i++ {
		_, _ = b.Append("a", RecipientAll, "msg")
	}

	recent := b.Recent("b", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(4), recent[0].ID)
	assert.Equal(t, int64(5), recent[1].ID)
}

type captureRecorder struct {
	msgs []Message
	err  error
}

func (c *captureRecorder) Record(msg Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestBoardRecorderHook(t *testing.T) {
	rec := &captureRecorder{}
	b := NewBoard(rec)

	_, err := b.Append("a", "b", "hello")
	require.NoError(t, err)
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "hello", rec.msgs[0].Body)
}

func TestBoardRecorderFailureKeepsMessage(t *testing.T) {
	rec := &captureRecorder{err: errors.New("disk full")}
	b := NewBoard(rec)

	_, err := b.Append("a", "b", "hello")
	assert.Error(t, err)
	// The in-memory entry survives the recorder failure.
	assert.Equal(t, 1, b.Len())
}

func TestMessageVisibleTo(t *testing.T) {
	direct := Message{Recipient: "writer_1"}
	assert.True(t, direct.VisibleTo("writer_1"))
	assert.False(t, direct.VisibleTo("writer_2"))

	broadcast := Message{Recipient: RecipientAll}
	assert.True(t, broadcast.VisibleTo("anyone"))
}
