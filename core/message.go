package core

import "time"

// RecipientAll is the broadcast sentinel: a message addressed to it is
// visible to every role on the team.
const RecipientAll = "all"

// SenderSystem authors board entries produced by the runtime itself, such as
// the initial task broadcast.
const SenderSystem = "system"

// Message is one immutable entry on the team message board. IDs are assigned
// by the board, start at 1 and increase by one per append.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"from"`
	Recipient string    `json:"to"`
	Body      string    `json:"content"`
	Timestamp time.Time `json:"ts"`
}

// VisibleTo reports whether the given role may read this message. Visibility
// is strictly two-tier: the exact recipient role, or a broadcast to
// RecipientAll. There are no role categories.
func (m Message) VisibleTo(role string) bool {
	return m.Recipient == role || m.Recipient == RecipientAll
}
