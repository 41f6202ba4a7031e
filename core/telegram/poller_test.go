package telegram

import (
	"net/http"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongpoll(t *testing.T) {
	cases := map[int]time.Duration{0: 10 * time.Second, -3: 10 * time.Second, 25: 25 * time.Second}
	for seconds, want := range cases {
		cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{
			RunMode:                coreconfig.RunModeLongpoll,
			LongPollTimeoutSeconds: seconds,
		}}
		p, ok := BuildPoller(cfg).(*tele.LongPoller)
		if !ok {
			t.Fatal("expected *tele.LongPoller")
		}
		if p.Timeout != want {
			t.Fatalf("timeout(%d) = %v, want %v", seconds, p.Timeout, want)
		}
	}
}

func TestBuildPollerWebhook(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeWebhook},
		Webhook: coreconfig.WebhookConfig{
			URL: "https://bot.example.com", Path: "/webhook",
			Listen: "0.0.0.0", Port: 8443, SecretToken: "s",
		},
	}
	p, ok := BuildPoller(cfg).(*tele.Webhook)
	if !ok {
		t.Fatal("expected *tele.Webhook")
	}
	if p.Listen != "0.0.0.0:8443" || p.Endpoint.PublicURL != "https://bot.example.com/webhook" || p.SecretToken != "s" {
		t.Fatalf("webhook = %+v", p)
	}
}

func TestHTTPClientOutlivesLongPoll(t *testing.T) {
	for _, poll := range []time.Duration{0, 10 * time.Second, 50 * time.Second} {
		c := BuildHTTPClient(poll)
		if c.Timeout <= poll {
			t.Fatalf("client timeout %v must exceed poll timeout %v", c.Timeout, poll)
		}
		rt, ok := c.Transport.(*retryTransport)
		if !ok {
			t.Fatal("expected retryTransport")
		}
		tr, ok := rt.base.(*http.Transport)
		if !ok {
			t.Fatal("expected *http.Transport")
		}
		if tr.ResponseHeaderTimeout <= poll {
			t.Fatalf("header timeout %v must exceed poll timeout %v", tr.ResponseHeaderTimeout, poll)
		}
	}
}
