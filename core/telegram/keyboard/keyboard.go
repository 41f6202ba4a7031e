// Package keyboard builds telebot reply markups from plain button values.
package keyboard

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn is an inline button. A non-empty WebAppURL turns it into a mini
// app launcher and Unique/Data are ignored.
type InlineBtn struct {
	Text      string
	Unique    string
	Data      string
	WebAppURL string
}

func (b InlineBtn) build(m *tele.ReplyMarkup) tele.InlineButton {
	if b.WebAppURL != "" {
		return *m.WebApp(b.Text, &tele.WebApp{URL: b.WebAppURL}).Inline()
	}
	return *m.Data(b.Text, b.Unique, b.Data).Inline()
}

// Grid lays buttons out n per row. n < 1 means one per row.
func Grid(buttons []InlineBtn, n int) [][]InlineBtn {
	if len(buttons) == 0 {
		return nil
	}
	return slices.Collect(slices.Chunk(buttons, max(n, 1)))
}

// Inline builds an inline keyboard, one slice per row.
func Inline(rows ...[]InlineBtn) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.InlineKeyboard = make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		built := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			built = append(built, b.build(m))
		}
		m.InlineKeyboard = append(m.InlineKeyboard, built)
	}
	return m
}

// WebApp is a single mini app launcher button.
func WebApp(text, url string) *tele.ReplyMarkup {
	return Inline([]InlineBtn{{Text: text, WebAppURL: url}})
}

// OneTime builds a resized reply keyboard that hides after one press.
func OneTime(rows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	reply := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		btns := make([]tele.Btn, 0, len(labels))
		for _, l := range labels {
			btns = append(btns, m.Text(l))
		}
		reply = append(reply, m.Row(btns...))
	}
	m.Reply(reply...)
	return m
}
