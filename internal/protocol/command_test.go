package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tcases := []struct {
		name     string
		input    string
		expected *Command
		ok       bool
	}{
		{
			name:     "join with room name",
			input:    "/join lobby",
			expected: &Command{Type: CmdJoinRoom, Arg: "lobby"},
			ok:       true,
		},
		{
			name:  "join without argument",
			input: "/join",
			ok:    false,
		},
		{
			name:  "join with too many arguments",
			input: "/join lobby extra",
			ok:    false,
		},
		{
			name:     "leave",
			input:    "/leave",
			expected: &Command{Type: CmdLeaveRoom},
			ok:       true,
		},
		{
			name:  "leave with argument",
			input: "/leave lobby",
			ok:    false,
		},
		{
			name:     "name with argument",
			input:    "/name alice",
			expected: &Command{Type: CmdSetName, Arg: "alice"},
			ok:       true,
		},
		{
			name:  "name without argument",
			input: "/name",
			ok:    false,
		},
		{
			name:     "room info",
			input:    "/room",
			expected: &Command{Type: CmdRoomInfo},
			ok:       true,
		},
		{
			name:     "create with -p flag",
			input:    "/create -p lobby",
			expected: &Command{Type: CmdCreateRoom, Arg: "lobby"},
			ok:       true,
		},
		{
			name:  "create without -p flag",
			input: "/create lobby",
			ok:    false,
		},
		{
			name:  "create with only flag",
			input: "/create -p",
			ok:    false,
		},
		{
			name:     "help",
			input:    "/help",
			expected: &Command{Type: CmdHelp},
			ok:       true,
		},
		{
			name:  "unknown command",
			input: "/frobnicate",
			ok:    false,
		},
		{
			name:  "plain chat text",
			input: "hello there",
			ok:    false,
		},
		{
			name:  "empty input",
			input: "",
			ok:    false,
		},
		{
			name:  "whitespace only",
			input: "   ",
			ok:    false,
		},
		{
			name:  "bare trigger",
			input: "/",
			ok:    false,
		},
		{
			name:     "surrounding whitespace is ignored",
			input:    "  /join lobby  ",
			expected: &Command{Type: CmdJoinRoom, Arg: "lobby"},
			ok:       true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := ParseCommand(tc.input)
			assert.Equal(t, tc.ok, ok, "expected parse result to match for input %q", tc.input)
			if tc.ok {
				assert.Equal(t, tc.expected, cmd, "expected parsed command to match for input %q", tc.input)
			} else {
				assert.Nil(t, cmd, "expected no command for input %q", tc.input)
			}
		})
	}
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/join lobby"), "expected trigger-prefixed input to be a command")
	assert.True(t, IsCommand("  /leave"), "expected leading whitespace to be ignored")
	assert.False(t, IsCommand("hello /join"), "expected mid-line trigger to be chat content")
	assert.False(t, IsCommand(""), "expected empty input to be chat content")
}

func TestCommandHelp(t *testing.T) {
	help := CommandHelp()
	assert.NotEmpty(t, help, "expected help text to be non-empty")
	for _, usage := range []string{"/join", "/leave", "/name", "/room", "/create -p", "/help"} {
		assert.Contains(t, help, usage, "expected help text to list %q", usage)
	}
}
