package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestCreateReturnsUniqueIDs(t *testing.T) {
	m := NewManager(2)
	a, b := m.Create(), m.Create()
	if a == "" || b == "" || a == b {
		t.Fatalf("ids = %q, %q", a, b)
	}
}

func TestHistoryFormatsExchanges(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	if got := m.History(id); got != "" {
		t.Fatalf("fresh session history = %q", got)
	}

	m.Record(id, "What is MCP?", "A protocol.")
	m.Record(id, "Who wrote it?", "Anthropic.")

	want := "User: What is MCP?\nAssistant: A protocol.\nUser: Who wrote it?\nAssistant: Anthropic."
	if got := m.History(id); got != want {
		t.Fatalf("history:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestHistoryEvictsOldestBeyondCap(t *testing.T) {
	m := NewManager(2)
	id := m.Create()
	for i := 1; i <= 4; i++ {
		m.Record(id, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	want := "User: q3\nAssistant: a3\nUser: q4\nAssistant: a4"
	if got := m.History(id); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestRecordUnknownSessionStartsOne(t *testing.T) {
	m := NewManager(2)
	m.Record("adopted", "q", "a")
	if got := m.History("adopted"); got != "User: q\nAssistant: a" {
		t.Fatalf("got %q", got)
	}
}

func TestRecordEmptySessionIDIsNoop(t *testing.T) {
	m := NewManager(2)
	m.Record("", "q", "a")
	if got := m.History(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestClearForgetsHistory(t *testing.T) {
	m := NewManager(2)
	id := m.Create()
	m.Record(id, "q", "a")
	m.Clear(id)
	if got := m.History(id); got != "" {
		t.Fatalf("got %q", got)
	}
	// The id stays usable after a clear.
	m.Record(id, "q2", "a2")
	if got := m.History(id); got != "User: q2\nAssistant: a2" {
		t.Fatalf("got %q", got)
	}
}

func TestManagerIsSafeForConcurrentUse(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Record(id, fmt.Sprintf("q%d", i), "a")
			_ = m.History(id)
		}(i)
	}
	wg.Wait()

	if got := m.History(id); got == "" {
		t.Fatal("history empty after concurrent records")
	}
}
