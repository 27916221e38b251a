// Package session keeps short per-conversation history so follow-up
// questions can refer back to earlier exchanges.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxExchanges is how many question/answer pairs are retained per
// session. Older exchanges are dropped.
const DefaultMaxExchanges = 2

type exchange struct {
	question string
	answer   string
}

// Manager tracks conversation sessions. Safe for concurrent use.
type Manager struct {
	mu           sync.Mutex
	sessions     map[string][]exchange
	maxExchanges int
}

func NewManager(maxExchanges int) *Manager {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &Manager{
		sessions:     make(map[string][]exchange),
		maxExchanges: maxExchanges,
	}
}

// Create returns a new session id.
func (m *Manager) Create() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()
	return id
}

// Record appends one question/answer pair, evicting the oldest pair once the
// session exceeds its exchange cap. Recording against an unknown id starts a
// new session under that id.
func (m *Manager) Record(sessionID, question, answer string) {
	if sessionID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.sessions[sessionID], exchange{question: question, answer: answer})
	if len(history) > m.maxExchanges {
		history = history[len(history)-m.maxExchanges:]
	}
	m.sessions[sessionID] = history
}

// History renders the session transcript for prompt injection. Empty string
// when the session is unknown or has no exchanges yet.
func (m *Manager) History(sessionID string) string {
	m.mu.Lock()
	history := m.sessions[sessionID]
	m.mu.Unlock()
	if len(history) == 0 {
		return ""
	}
	parts := make([]string, 0, len(history))
	for _, ex := range history {
		parts = append(parts, fmt.Sprintf("User: %s\nAssistant: %s", ex.question, ex.answer))
	}
	return strings.Join(parts, "\n")
}

// Clear forgets a session's history but keeps the id usable.
func (m *Manager) Clear(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
