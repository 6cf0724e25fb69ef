package core

import (
	"fmt"
	"sync"
	"time"
)

// Recorder receives every message appended to a Board, in append order.
// Implementations persist entries (JSONL file, database); the board itself
// remains the authoritative in-memory log for the run.
type Recorder interface {
	Record(msg Message) error
}

// Board is the append-only message log shared by all agents of a team.
//
// All appends go through a single mutex so entries get strictly increasing
// IDs even if tool execution ever overlaps with scheduling. Messages are
// never edited or removed once written.
type Board struct {
	mu        sync.Mutex
	messages  []Message
	nextID    int64
	recorders []Recorder
}

// NewBoard constructs an empty board. Recorders are invoked synchronously on
// every append, in the order given.
func NewBoard(recorders ...Recorder) *Board {
	return &Board{nextID: 1, recorders: recorders}
}

// Append writes a new message and returns it with its assigned ID. A recorder
// failure surfaces as an error so the posting tool can report it, but the
// in-memory entry is kept either way: the board never loses an accepted
// append.
func (b *Board) Append(sender, recipient, body string) (Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := Message{
		ID:        b.nextID,
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
	b.nextID++
	b.messages = append(b.messages, msg)

	for _, r := range b.recorders {
		if err := r.Record(msg); err != nil {
			return msg, fmt.Errorf("record message %d: %w", msg.ID, err)
		}
	}

	return msg, nil
}

// VisibleTo returns, in board order, every message with ID greater than
// afterID that the role may read. Pass afterID 0 for the full visible log.
func (b *Board) VisibleTo(role string, afterID int64) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Message
	for _, m := range b.messages {
		if m.ID > afterID && m.VisibleTo(role) {
			out = append(out, m)
		}
	}
	return out
}

// Recent returns the last n messages visible to the role, in board order.
func (b *Board) Recent(role string, n int) []Message {
	visible := b.VisibleTo(role, 0)
	if n > 0 && len(visible) > n {
		visible = visible[len(visible)-n:]
	}
	return visible
}

// All returns a copy of the full log. Intended for reports and recorders,
// not for agent reads, which must go through VisibleTo.
func (b *Board) All() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// LastID returns the ID of the most recent message, or 0 on an empty board.
func (b *Board) LastID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextID - 1
}

// Len returns the number of messages on the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}
