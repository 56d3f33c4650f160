package protocol

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotInRoom = errors.New("chat messages require a room")

type BaseMessage struct {
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is the inbound envelope. Exactly one of Command or
// Chat is set.
type ClientMessage struct {
	BaseMessage
	Command *Command     `json:"command,omitempty"`
	Chat    *ChatMessage `json:"chat,omitempty"`
}

// ServerMessage is the outbound envelope. Exactly one variant field
// is set.
type ServerMessage struct {
	BaseMessage
	CommandResult *CommandResult   `json:"command_result,omitempty"`
	StateUpdate   *StateUpdate     `json:"state_update,omitempty"`
	Chat          *ChatMessage     `json:"chat,omitempty"`
	RoomError     *RoomActionError `json:"room_error,omitempty"`
	Authenticated *Authenticated   `json:"authenticated,omitempty"`
	CreatedRoom   *CreatedRoom     `json:"created_room,omitempty"`
}

type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StateUpdate struct {
	Username string `json:"username"`
	Room     string `json:"room,omitempty"`
	Message  string `json:"message"`
}

type RoomActionError struct {
	Message string `json:"message"`
}

type Authenticated struct{}

type CreatedRoom struct {
	Name string `json:"name"`
}

type ChatMessage struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage builds a chat message for the given room. It fails
// when the sender does not currently occupy a room.
func NewChatMessage(sender, content, room string) (*ChatMessage, error) {
	if room == "" {
		return nil, ErrNotInRoom
	}

	return &ChatMessage{
		Sender:    sender,
		Content:   content,
		Room:      room,
		Timestamp: Now(),
	}, nil
}

// RoomInformation describes the room a user currently occupies, as
// visible to any member without special privileges.
type RoomInformation struct {
	UsersCount        int      `json:"users_count"`
	RoomSize          int      `json:"room_size"`
	RoomOwnerUsername string   `json:"room_owner_username"`
	CurrentUsers      []string `json:"current_users"`
}

func (ri RoomInformation) String() string {
	return fmt.Sprintf("occupants %d/%d, owner %s, users: %s",
		ri.UsersCount, ri.RoomSize, ri.RoomOwnerUsername, strings.Join(ri.CurrentUsers, ", "))
}

// JoinedRoomAck is the success message for a completed join. The
// client matches it against its pending room before committing the
// room change, so an unrelated success cannot confirm a join.
func JoinedRoomAck(room string) string {
	return "joined room " + room
}

func OkResult(message string) *ServerMessage {
	return &ServerMessage{
		BaseMessage:   BaseMessage{Timestamp: Now()},
		CommandResult: &CommandResult{Success: true, Message: message},
	}
}

func FailResult(message string) *ServerMessage {
	return &ServerMessage{
		BaseMessage:   BaseMessage{Timestamp: Now()},
		CommandResult: &CommandResult{Success: false, Message: message},
	}
}

func NewStateUpdate(username, room, message string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		StateUpdate: &StateUpdate{Username: username, Room: room, Message: message},
	}
}

func NewRoomError(message string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		RoomError:   &RoomActionError{Message: message},
	}
}

func NewAuthenticated() *ServerMessage {
	return &ServerMessage{
		BaseMessage:   BaseMessage{Timestamp: Now()},
		Authenticated: &Authenticated{},
	}
}

func NewCreatedRoom(name string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		CreatedRoom: &CreatedRoom{Name: name},
	}
}

func NewChat(msg *ChatMessage) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: msg.Timestamp},
		Chat:        msg,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
