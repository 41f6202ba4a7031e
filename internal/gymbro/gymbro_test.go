package gymbro

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeCompleter struct {
	calls  [][]Message
	answer string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []Message) (string, error) {
	f.calls = append(f.calls, append([]Message(nil), msgs...))
	if f.err != nil {
		return "", f.err
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return fmt.Sprintf("reply %d", len(f.calls)), nil
}

func TestReplyRelaysAnswerUnchanged(t *testing.T) {
	fc := &fakeCompleter{answer: "  Eat big, lift big 🍗  "}
	svc := NewService(fc, nil)
	if got := svc.Reply(context.Background(), 1, "how do I bulk?"); got != fc.answer {
		t.Fatalf("reply = %q, want %q", got, fc.answer)
	}
}

func TestReplyWrapsOnlyUserTurns(t *testing.T) {
	fc := &fakeCompleter{}
	svc := NewService(fc, NewMemoryHistory(10))
	ctx := context.Background()
	svc.Reply(ctx, 1, "first")
	svc.Reply(ctx, 1, "second")

	want := []Message{
		{Role: RoleUser, Content: Preprompt + "first" + Postprompt},
		{Role: RoleAssistant, Content: "reply 1"},
		{Role: RoleUser, Content: Preprompt + "second" + Postprompt},
	}
	if diff := cmp.Diff(want, fc.calls[1]); diff != "" {
		t.Fatalf("second request mismatch (-want +got):\n%s", diff)
	}

	stored, _ := svc.history.Load(ctx, 1)
	for _, m := range stored {
		if strings.Contains(m.Content, Preprompt) {
			t.Fatalf("stored turn carries persona text: %q", m.Content)
		}
	}
}

func TestHistoryCappedWithFIFOEviction(t *testing.T) {
	fc := &fakeCompleter{}
	hist := NewMemoryHistory(DefaultHistorySize)
	svc := NewService(fc, hist)
	ctx := context.Background()
	for i := 1; i <= 8; i++ {
		svc.Reply(ctx, 42, fmt.Sprintf("q%d", i))
		stored, _ := hist.Load(ctx, 42)
		if len(stored) > DefaultHistorySize {
			t.Fatalf("after %d exchanges stored %d turns", i, len(stored))
		}
	}
	stored, _ := hist.Load(ctx, 42)
	if len(stored) != DefaultHistorySize {
		t.Fatalf("len = %d, want %d", len(stored), DefaultHistorySize)
	}
	// 16 turns were produced; the first 6 (q1..q3 with replies) are gone.
	if stored[0].Content != "q4" || stored[len(stored)-1].Content != "reply 8" {
		t.Fatalf("window = %q .. %q", stored[0].Content, stored[len(stored)-1].Content)
	}
	if other, _ := hist.Load(ctx, 7); len(other) != 0 {
		t.Fatalf("other user history = %v", other)
	}
}

func TestReplyErrorKeepsHistory(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("boom")}
	hist := NewMemoryHistory(10)
	svc := NewService(fc, hist)
	if got := svc.Reply(context.Background(), 1, "hi"); got != ErrorReply {
		t.Fatalf("reply = %q, want %q", got, ErrorReply)
	}
	if stored, _ := hist.Load(context.Background(), 1); len(stored) != 0 {
		t.Fatalf("stored = %v, want empty", stored)
	}
}

type blankCompleter struct{}

func (blankCompleter) Complete(context.Context, []Message) (string, error) { return " ", nil }

func TestReplyEmptyAnswer(t *testing.T) {
	hist := NewMemoryHistory(10)
	svc := NewService(blankCompleter{}, hist)
	if got := svc.Reply(context.Background(), 1, "hi"); got != EmptyReply {
		t.Fatalf("reply = %q, want %q", got, EmptyReply)
	}
	stored, _ := hist.Load(context.Background(), 1)
	if len(stored) != 2 || stored[1].Content != EmptyReply {
		t.Fatalf("stored = %v", stored)
	}
}

func TestReplyOffline(t *testing.T) {
	svc := NewService(nil, nil)
	if svc.Enabled() {
		t.Fatal("Enabled = true without completer")
	}
	if got := svc.Reply(context.Background(), 1, "hi"); got != OfflineReply {
		t.Fatalf("reply = %q, want %q", got, OfflineReply)
	}
}

func TestMemoryHistoryAppendMany(t *testing.T) {
	h := NewMemoryHistory(3)
	ctx := context.Background()
	_ = h.Append(ctx, 1, Message{Content: "a"}, Message{Content: "b"}, Message{Content: "c"}, Message{Content: "d"})
	got, _ := h.Load(ctx, 1)
	want := []Message{{Content: "b"}, {Content: "c"}, {Content: "d"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToParamsRoles(t *testing.T) {
	params := toParams([]Message{
		{Role: RoleUser, Content: "u"},
		{Role: RoleAssistant, Content: "a"},
		{Role: "system", Content: "s"},
	})
	if len(params) != 3 {
		t.Fatalf("len = %d, want 3", len(params))
	}
	if params[0].OfUser == nil || params[1].OfAssistant == nil || params[2].OfSystem == nil {
		t.Fatalf("unexpected role mapping: %+v", params)
	}
}
