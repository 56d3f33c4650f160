package protocol

import "strings"

// Trigger is the leading symbol identifying a text command.
const Trigger = "/"

type CommandType string

const (
	CmdSetName    CommandType = "set_name"
	CmdJoinRoom   CommandType = "join_room"
	CmdLeaveRoom  CommandType = "leave_room"
	CmdRoomInfo   CommandType = "room_info"
	CmdAuthUser   CommandType = "auth_user"
	CmdCreateRoom CommandType = "create_room"
	CmdHelp       CommandType = "help"
)

// Command is a tagged command variant. Arg carries the single
// argument for the variants that take one.
type Command struct {
	Type CommandType `json:"type"`
	Arg  string      `json:"arg,omitempty"`
}

// IsCommand reports whether the input line starts with the command
// trigger. Text without the trigger is chat content.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), Trigger)
}

// ParseCommand parses an input line into a Command. It returns false
// for any input that is not a recognized command with the exact
// documented arity, including trigger-prefixed input that matches no
// command. It never panics on malformed input.
func ParseCommand(input string) (*Command, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, Trigger) {
		return nil, false
	}

	tokens := strings.Fields(trimmed)
	switch tokens[0] {
	case "/join":
		if len(tokens) == 2 {
			return &Command{Type: CmdJoinRoom, Arg: tokens[1]}, true
		}
	case "/leave":
		if len(tokens) == 1 {
			return &Command{Type: CmdLeaveRoom}, true
		}
	case "/name":
		if len(tokens) == 2 {
			return &Command{Type: CmdSetName, Arg: tokens[1]}, true
		}
	case "/room":
		if len(tokens) == 1 {
			return &Command{Type: CmdRoomInfo}, true
		}
	case "/create":
		if len(tokens) == 3 && tokens[1] == "-p" {
			return &Command{Type: CmdCreateRoom, Arg: tokens[2]}, true
		}
	case "/help":
		if len(tokens) == 1 {
			return &Command{Type: CmdHelp}, true
		}
	}

	return nil, false
}

type commandUsage struct {
	usage       string
	description string
}

var commandUsages = []commandUsage{
	{"/join <room-name>", "Join a given room on the server"},
	{"/leave", "Leave the room that you currently are in"},
	{"/name <user-name>", "Set your display name"},
	{"/room", "Show information about your current room"},
	{"/create -p <room-name>", "Create a new public room"},
	{"/help", "List available commands"},
}

// CommandHelp returns the user-facing usage table for the Help reply.
func CommandHelp() string {
	var b strings.Builder
	b.WriteString("available commands:")
	for _, c := range commandUsages {
		b.WriteString("\n  ")
		b.WriteString(c.usage)
		b.WriteString(" - ")
		b.WriteString(c.description)
	}

	return b.String()
}
