package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a registered slash command. AdminOnly and Hidden commands stay
// out of the menu; Aliases are alternative names without the leading slash.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Listed reports whether the command belongs in the public command menu.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}

// MenuEntry converts "/name" into the form setMyCommands accepts: no slash,
// lower case, at most 32 characters.
func MenuEntry(cmd tele.Command) tele.Command {
	name := strings.ToLower(strings.TrimPrefix(cmd.Text, "/"))
	if len(name) > 32 {
		name = name[:32]
	}
	return tele.Command{Text: name, Description: cmd.Description}
}
