// Package notify provides the notification mailbox capability. The
// escalation engine and command services talk to the Sink interface
// only; storage representation is an implementation detail behind it.
package notify

import "sync"

// Sink accepts notifications for a user.
type Sink interface {
	Notify(username, message string)
}

// Mailbox is a Sink whose messages can be read back and cleared, for
// the viewNotifications surface.
type Mailbox interface {
	Sink
	Messages(username string) []string
	Clear(username string)
}

// MemoryMailbox keeps per-user message lists in memory.
type MemoryMailbox struct {
	mu    sync.Mutex
	boxes map[string][]string
}

// NewMemoryMailbox creates an empty mailbox.
func NewMemoryMailbox() *MemoryMailbox {
	return &MemoryMailbox{boxes: make(map[string][]string)}
}

// Notify appends a message to the user's mailbox.
func (m *MemoryMailbox) Notify(username, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boxes[username] = append(m.boxes[username], message)
}

// Messages returns a copy of the user's mailbox, oldest first.
func (m *MemoryMailbox) Messages(username string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.boxes[username]
	out := make([]string, len(msgs))
	copy(out, msgs)
	return out
}

// Clear empties the user's mailbox.
func (m *MemoryMailbox) Clear(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boxes, username)
}
