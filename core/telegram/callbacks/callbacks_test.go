package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data, key, payload string
	}{
		{"\fviewSession|3", "viewSession", "3"},
		{"\ffinish", "finish", ""},
		{"addSet|", "addSet", ""},
	}
	for _, tc := range cases {
		key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if key != tc.key || payload != tc.payload {
			t.Errorf("ParseCallbackData(%q) = %q, %q; want %q, %q", tc.data, key, payload, tc.key, tc.payload)
		}
	}
}

func TestCallbackKeyPrefersUnique(t *testing.T) {
	key, payload := CallbackKey(&tele.Callback{Unique: "viewSession", Data: "2"})
	if key != "viewSession" || payload != "2" {
		t.Fatalf("got %q, %q", key, payload)
	}
	if key, _ := CallbackKey(nil); key != "" {
		t.Fatalf("nil callback key = %q", key)
	}
}

func TestPayloadIndex(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Token: "test", Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	cases := map[string]struct {
		n  int
		ok bool
	}{
		"\fviewSession|3":   {3, true},
		"\fviewSession| 12": {12, true},
		"\fviewSession|0":   {0, false},
		"\fviewSession|-1":  {0, false},
		"\fviewSession|abc": {0, false},
		"\fviewSession":     {0, false},
	}
	for data, want := range cases {
		c := bot.NewContext(tele.Update{Callback: &tele.Callback{Data: data}})
		n, ok := PayloadIndex(c)
		if n != want.n || ok != want.ok {
			t.Errorf("PayloadIndex(%q) = %d, %v; want %d, %v", data, n, ok, want.n, want.ok)
		}
	}
}
