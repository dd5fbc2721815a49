package conversation

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/sage/internal/models"
)

func entry(i int) models.ConversationEntry {
	return models.ConversationEntry{
		Timestamp: time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
		Query:     fmt.Sprintf("query %d", i),
		Response:  fmt.Sprintf("response %d", i),
		Ticker:    "TSLA",
	}
}

func TestAppendTrimsToCap(t *testing.T) {
	store := NewStore()
	for i := 0; i < 25; i++ {
		store.Append("s1", entry(i))
	}

	if got := store.Len("s1"); got != 20 {
		t.Errorf("Expected 20 retained entries, got %d", got)
	}

	// Oldest entries are dropped first.
	history := store.RecentHistory("s1", 20)
	if strings.Contains(history, "query 4") {
		t.Error("Expected trimmed entry to be gone")
	}
	if !strings.Contains(history, "query 5") || !strings.Contains(history, "query 24") {
		t.Error("Expected entries 5..24 to survive the trim")
	}
}

func TestRecentHistoryOrderAndLimit(t *testing.T) {
	store := NewStore()
	for i := 0; i < 7; i++ {
		store.Append("s1", entry(i))
	}

	history := store.RecentHistory("s1", 5)

	for i := 2; i < 7; i++ {
		if !strings.Contains(history, fmt.Sprintf("query %d", i)) {
			t.Errorf("Expected query %d in history", i)
		}
	}
	if strings.Contains(history, "query 1") {
		t.Error("Expected only the last 5 entries")
	}

	// Chronological order, oldest first.
	if strings.Index(history, "query 2") > strings.Index(history, "query 6") {
		t.Error("Expected history in chronological order")
	}
	if got := strings.Count(history, "---"); got != 4 {
		t.Errorf("Expected 4 separators between 5 entries, got %d", got)
	}
}

func TestRecentHistoryFormatting(t *testing.T) {
	store := NewStore()
	store.Append("s1", models.ConversationEntry{Query: "How is Tesla?", Response: "Doing well.", Ticker: "TSLA"})

	history := store.RecentHistory("s1", 0)
	for _, want := range []string{
		"Previous Query: How is Tesla?",
		"Previous Response: Doing well.",
		"Previous Stock: TSLA",
	} {
		if !strings.Contains(history, want) {
			t.Errorf("History missing %q:\n%s", want, history)
		}
	}
}

func TestRecentHistoryOmitsEmptyTicker(t *testing.T) {
	store := NewStore()
	store.Append("s1", models.ConversationEntry{Query: "hello", Response: "hi"})

	if strings.Contains(store.RecentHistory("s1", 5), "Previous Stock") {
		t.Error("Expected no stock line for an empty ticker")
	}
}

func TestUnknownSessionIsEmpty(t *testing.T) {
	store := NewStore()
	if got := store.RecentHistory("nope", 5); got != "" {
		t.Errorf("Expected empty history, got %q", got)
	}
	if got := store.Len("nope"); got != 0 {
		t.Errorf("Expected zero length, got %d", got)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore()
	store.Append("a", entry(1))
	store.Append("b", entry(2))

	if strings.Contains(store.RecentHistory("a", 5), "query 2") {
		t.Error("Session a sees session b's entries")
	}
}

func TestConcurrentAppend(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				store.Append("shared", entry(i))
				store.RecentHistory("shared", 5)
			}
		}()
	}
	wg.Wait()

	if got := store.Len("shared"); got != 20 {
		t.Errorf("Expected exactly 20 entries after concurrent appends, got %d", got)
	}
}
