package app

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"
	"github.com/m3rciful/yeabuddy/core/telegram/ui"
)

const (
	msgUnknownCommand  = "I don't know that one, bro. Try /pumpit to start training! 💪"
	msgUnsupported     = "I can't lift that, bro. Send text or use /pumpit! 💪"
	msgUnknownCallback = "That button expired, bro. Use /pumpit to start fresh! 💪"
)

type fallbacks struct{}

var _ ui.FallbackProvider = fallbacks{}

func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownCommand)
	}
}

func (fallbacks) UnsupportedMedia() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnsupported)
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownCallback)
	}
}
