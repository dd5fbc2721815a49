// Package conversation keeps per-session chat history in memory
package conversation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bobmcallan/sage/internal/interfaces"
	"github.com/bobmcallan/sage/internal/models"
)

const (
	// maxEntriesPerSession caps retained turns per session; oldest drop first.
	maxEntriesPerSession = 20

	// DefaultHistoryEntries is how many turns RecentHistory renders when the
	// caller passes a non-positive limit.
	DefaultHistoryEntries = 5

	historySeparator = "---"
)

// Store implements the ConversationStore interface. Sessions live for the
// process lifetime only; there is no expiry by time.
type Store struct {
	mu       sync.Mutex
	sessions map[string][]models.ConversationEntry
}

// NewStore creates an empty conversation store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]models.ConversationEntry),
	}
}

// Append records a turn for a session and trims to the retention cap.
func (s *Store) Append(sessionID string, entry models.ConversationEntry) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.sessions[sessionID], entry)
	if len(entries) > maxEntriesPerSession {
		entries = entries[len(entries)-maxEntriesPerSession:]
	}
	s.sessions[sessionID] = entries
}

// RecentHistory renders up to maxEntries most recent turns, oldest first, as
// Previous Query / Response / Stock triples separated by a marker line.
// Returns "" for unknown or empty sessions.
func (s *Store) RecentHistory(sessionID string, maxEntries int) string {
	if maxEntries <= 0 {
		maxEntries = DefaultHistoryEntries
	}

	s.mu.Lock()
	entries := s.sessions[sessionID]
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	entries = append([]models.ConversationEntry(nil), entries...)
	s.mu.Unlock()

	if len(entries) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "Previous Query: %s\n", entry.Query)
		fmt.Fprintf(&b, "Previous Response: %s", entry.Response)
		if entry.Ticker != "" {
			fmt.Fprintf(&b, "\nPrevious Stock: %s", entry.Ticker)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n"+historySeparator+"\n")
}

// Len reports the number of retained entries for a session.
func (s *Store) Len(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[sessionID])
}

// Ensure Store implements ConversationStore
var _ interfaces.ConversationStore = (*Store)(nil)
