package history_test

import (
	"testing"

	"github.com/bhavnacorp/assist/internal/service/history"
)

func TestRecordAndList(t *testing.T) {
	store := history.NewStore()
	store.Record(history.Entry{Question: "q1", Answer: "a1"})
	store.Record(history.Entry{Question: "q2", Answer: "a2", Summary: "s2"})

	entries := store.List()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Question != "q1" || entries[1].Question != "q2" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[0].Timestamp.IsZero() {
		t.Fatal("entry not timestamped")
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := history.NewStore()
	store.Record(history.Entry{Question: "q", Answer: "a"})

	entries := store.List()
	entries[0].Answer = "mutated"

	if store.List()[0].Answer != "a" {
		t.Fatal("List leaked internal slice")
	}
}

func TestClear(t *testing.T) {
	store := history.NewStore()
	store.Record(history.Entry{Question: "q", Answer: "a"})
	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("expected empty history, got %d entries", store.Len())
	}
}
