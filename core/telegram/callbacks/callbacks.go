// Package callbacks decodes inline button data.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits telebot's "\f<unique>|<payload>" encoding.
// The payload is empty when the button carried none.
func ParseCallbackData(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	unique, payload, _ = strings.Cut(strings.TrimPrefix(cb.Data, "\f"), "|")
	return strings.TrimSpace(unique), payload
}

// CallbackKey prefers the Unique telebot already extracted and falls back
// to parsing Data.
func CallbackKey(cb *tele.Callback) (unique, payload string) {
	if cb != nil && cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseCallbackData(cb)
}

// CallbackPayload is the payload of the callback in c.
func CallbackPayload(c tele.Context) string {
	_, payload := CallbackKey(c.Callback())
	return payload
}

// PayloadIndex reads a 1-based list position from the callback payload,
// as sent by numbered buttons. ok is false for anything but a positive integer.
func PayloadIndex(c tele.Context) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(CallbackPayload(c)))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
