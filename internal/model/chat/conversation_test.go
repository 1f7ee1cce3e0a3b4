package chat_test

import (
	"testing"

	"github.com/bhavnacorp/assist/internal/model/chat"
)

func TestNewConversationSeedsGreeting(t *testing.T) {
	conv := chat.NewConversation("Hi there!")

	turns := conv.Snapshot()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Sender != chat.SenderBot {
		t.Fatalf("greeting sender: got %s want %s", turns[0].Sender, chat.SenderBot)
	}
	if turns[0].Text != "Hi there!" {
		t.Fatalf("greeting text: got %q", turns[0].Text)
	}
	if turns[0].ID == "" {
		t.Fatal("greeting turn missing id")
	}
}

func TestConversationAppendPreservesOrder(t *testing.T) {
	conv := chat.NewConversation("hello")
	conv.Append(chat.SenderUser, "first")
	conv.Append(chat.SenderBot, "second")
	conv.Append(chat.SenderUser, "first")

	turns := conv.Snapshot()
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	want := []string{"hello", "first", "second", "first"}
	for i, text := range want {
		if turns[i].Text != text {
			t.Fatalf("turn %d: got %q want %q", i, turns[i].Text, text)
		}
	}
}

func TestConversationSnapshotIsCopy(t *testing.T) {
	conv := chat.NewConversation("hello")
	first := conv.Snapshot()
	first[0].Text = "mutated"

	if got := conv.Snapshot()[0].Text; got != "hello" {
		t.Fatalf("snapshot mutation leaked into store: %q", got)
	}
}
