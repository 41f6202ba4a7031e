package commands

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestListed(t *testing.T) {
	if !(Command{}).Listed() {
		t.Fatal("plain command must be listed")
	}
	if (Command{Hidden: true}).Listed() || (Command{AdminOnly: true}).Listed() {
		t.Fatal("hidden and admin commands must not be listed")
	}
}

func TestMenuEntry(t *testing.T) {
	got := MenuEntry(tele.Command{Text: "/StartWorkout", Description: "Open the app"})
	if got.Text != "startworkout" || got.Description != "Open the app" {
		t.Fatalf("MenuEntry = %+v", got)
	}
}
