package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, userID int64, text string) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Token: "test", Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return bot.NewContext(tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   text,
		},
	})
}

type fakeFSM struct {
	pending map[int64]bool
	handled []string
}

func (f *fakeFSM) InProgress(userID int64) bool { return f.pending[userID] }

func (f *fakeFSM) ManagerHandler(c tele.Context) error {
	f.handled = append(f.handled, c.Text())
	return nil
}

func TestDivertPending(t *testing.T) {
	fsm := &fakeFSM{pending: map[int64]bool{1: true}}
	var direct []string
	h := DivertPending(fsm)(func(c tele.Context) error {
		direct = append(direct, c.Text())
		return nil
	})

	_ = h(newContext(t, 1, "/finish"))
	_ = h(newContext(t, 2, "/finish"))

	if len(fsm.handled) != 1 || fsm.handled[0] != "/finish" {
		t.Fatalf("fsm handled %v, want [/finish]", fsm.handled)
	}
	if len(direct) != 1 {
		t.Fatalf("direct handled %v, want one call for user 2", direct)
	}
}

func TestAdminOnly(t *testing.T) {
	rejected := 0
	called := 0
	h := AdminOnlyMiddleware(AdminOptions{
		AdminID:  7,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(func(tele.Context) error { called++; return nil })

	_ = h(newContext(t, 7, "/active"))
	_ = h(newContext(t, 8, "/active"))
	if called != 1 || rejected != 1 {
		t.Fatalf("called=%d rejected=%d, want 1 and 1", called, rejected)
	}

	open := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { called++; return nil })
	_ = open(newContext(t, 7, "/active"))
	if called != 1 {
		t.Fatalf("called=%d after unset admin id, want 1", called)
	}
}

func TestMessageMetricsResetsCounters(t *testing.T) {
	c := newContext(t, 1, "x")
	c.Set("replies", 5)
	var msgs int
	var kb bool
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		msgs, kb = GetCounters(c)
		return nil
	})
	_ = h(c)
	if msgs != 0 || kb {
		t.Fatalf("counters = %d/%v, want 0/false", msgs, kb)
	}
}

func TestRateLimit(t *testing.T) {
	limited := 0
	called := 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { called++; return nil })

	_ = h(newContext(t, 1, "a"))
	_ = h(newContext(t, 1, "b"))
	_ = h(newContext(t, 2, "c"))
	if called != 2 || limited != 1 {
		t.Fatalf("called=%d limited=%d, want 2 and 1", called, limited)
	}
}

func TestRecoverSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newContext(t, 1, "x")); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	h = RecoverMiddleware(func(tele.Context) error { return errors.New("plain") })
	if err := h(newContext(t, 1, "x")); err == nil {
		t.Fatal("plain errors must pass through")
	}
}

func TestRateLimitLetsWebAppDataThrough(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Token: "test", Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	payload := func() tele.Context {
		return bot.NewContext(tele.Update{Message: &tele.Message{
			Sender:     &tele.User{ID: 5},
			Chat:       &tele.Chat{ID: 5},
			WebAppData: &tele.WebAppData{Data: `{"exercises":[]}`},
		}})
	}

	called := 0
	h := RateLimitMiddleware(RateLimitOptions{Interval: time.Hour})(func(tele.Context) error { called++; return nil })
	_ = h(payload())
	_ = h(payload())
	if called != 2 {
		t.Fatalf("called = %d, want 2", called)
	}
}

func TestUserWindowPrunesIdleUsers(t *testing.T) {
	w := &userWindow{interval: time.Second, last: make(map[int64]time.Time)}
	t0 := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	if !w.admit(1, t0) {
		t.Fatal("first update must pass")
	}
	if w.admit(1, t0.Add(500*time.Millisecond)) {
		t.Fatal("second update inside the window must be limited")
	}
	if !w.admit(2, t0.Add(2*time.Minute)) {
		t.Fatal("other user must pass")
	}
	if _, ok := w.last[1]; ok || len(w.last) != 1 {
		t.Fatalf("idle user not pruned: %v", w.last)
	}
}

func TestUpdateKind(t *testing.T) {
	cases := map[string]string{
		"/pumpit": "command",
		"bench":   "text",
		"":        "media",
	}
	for text, want := range cases {
		if got := UpdateKind(newContext(t, 1, text)); got != want {
			t.Errorf("UpdateKind(%q) = %q, want %q", text, got, want)
		}
	}
}
