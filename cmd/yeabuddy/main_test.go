package main

import "testing"

func TestCLICommands(t *testing.T) {
	a := newCLI()
	for _, name := range []string{"run", "migrate"} {
		if a.Command(name) == nil {
			t.Errorf("command %q missing", name)
		}
	}
	if a.Action == nil {
		t.Fatal("default action must start the bot")
	}
}
