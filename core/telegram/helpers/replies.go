package helpers

import tele "gopkg.in/telebot.v4"

const (
	repliesKey  = "replies"
	keyboardKey = "replies_kb"
)

// ResetReplies clears the per-update reply counters.
func ResetReplies(c tele.Context) {
	c.Set(repliesKey, 0)
	c.Set(keyboardKey, false)
}

// Replies reports how many replies were queued for the current update and
// whether any of them carried a keyboard.
func Replies(c tele.Context) (int, bool) {
	n, _ := c.Get(repliesKey).(int)
	kb, _ := c.Get(keyboardKey).(bool)
	return n, kb
}

func countReply(c tele.Context, withKeyboard bool) {
	n, _ := c.Get(repliesKey).(int)
	c.Set(repliesKey, n+1)
	if withKeyboard {
		c.Set(keyboardKey, true)
	}
}
