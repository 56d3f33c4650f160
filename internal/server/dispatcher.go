package server

import (
	"errors"

	"github.com/rustic-reach/reach/internal/protocol"
)

// handleMessage routes one inbound envelope. Every failure is
// reported back on the originating connection; nothing here ends the
// connection.
func (cs *ChatServer) handleMessage(c *Client, msg *protocol.ClientMessage) {
	switch {
	case msg.Command != nil:
		cs.handleCommand(c, msg.Command)
	case msg.Chat != nil:
		cs.handleChat(c, msg.Chat)
	default:
		c.queueMessage(protocol.FailResult("invalid message format"))
	}
}

func (cs *ChatServer) handleCommand(c *Client, cmd *protocol.Command) {
	switch cmd.Type {
	case protocol.CmdAuthUser:
		cs.handleAuth(c, cmd.Arg)
	case protocol.CmdSetName:
		cs.handleSetName(c, cmd.Arg)
	case protocol.CmdJoinRoom:
		cs.handleJoin(c, cmd.Arg)
	case protocol.CmdLeaveRoom:
		cs.handleLeave(c)
	case protocol.CmdCreateRoom:
		cs.handleCreateRoom(c, cmd.Arg)
	case protocol.CmdRoomInfo:
		cs.handleRoomInfo(c)
	case protocol.CmdHelp:
		c.queueMessage(protocol.OkResult(protocol.CommandHelp()))
	default:
		c.queueMessage(protocol.FailResult("unknown command"))
	}
}

// handleAuth derives the identity key from the client's hashed token.
// The id is fixed on first auth; repeated auth commands are
// acknowledged without changing it.
func (cs *ChatServer) handleAuth(c *Client, hashedToken string) {
	if hashedToken == "" {
		c.queueMessage(protocol.FailResult("missing auth token"))
		return
	}

	id := protocol.HashToken(hashedToken)
	if c.user.SetID(id) {
		cs.registry.RegisterUser(c.user)
		cs.log.Printf("authenticated conn %q as %q", c.connID, c.user.ID())
	}

	c.queueMessage(protocol.NewAuthenticated())
	if cs.opts.WelcomeMessage != "" {
		c.queueMessage(protocol.NewStateUpdate(c.user.Name(), c.user.Room(), cs.opts.WelcomeMessage))
	}
}

func (cs *ChatServer) handleSetName(c *Client, name string) {
	if err := c.user.SetName(name); err != nil {
		c.queueMessage(protocol.FailResult(err.Error()))
		return
	}

	cs.log.Printf("conn %q renamed to %q", c.connID, name)
	c.queueMessage(protocol.NewStateUpdate(name, c.user.Room(), "new user name set"))
}

func (cs *ChatServer) handleJoin(c *Client, roomName string) {
	if c.user.ID() == "" {
		c.queueMessage(protocol.NewRoomError("authenticate before joining a room"))
		return
	}

	// The plain join path carries no password, so protected rooms
	// refuse it with ErrPasswordRequired.
	vacatedDeleted, err := cs.registry.Join(roomName, c.user, "")
	if err != nil {
		c.queueMessage(protocol.NewRoomError(err.Error()))
		return
	}
	if vacatedDeleted {
		cs.stats.Decr(metricActiveRooms)
	}

	cs.log.Printf("user %q joined room %q", c.user.Name(), roomName)
	c.queueMessage(protocol.OkResult(protocol.JoinedRoomAck(roomName)))
}

func (cs *ChatServer) handleLeave(c *Client) {
	deleted, err := cs.registry.Leave(c.user)
	if err != nil {
		c.queueMessage(protocol.NewRoomError(err.Error()))
		return
	}
	if deleted {
		cs.stats.Decr(metricActiveRooms)
	}

	c.queueMessage(protocol.NewStateUpdate(c.user.Name(), "", "left room"))
}

func (cs *ChatServer) handleCreateRoom(c *Client, roomName string) {
	if c.user.ID() == "" {
		c.queueMessage(protocol.NewRoomError("authenticate before creating a room"))
		return
	}

	room, err := cs.registry.CreatePublicRoom(roomName, cs.opts.DefaultRoomCapacity, c.user)
	if err != nil {
		c.queueMessage(protocol.NewRoomError(err.Error()))
		return
	}

	cs.stats.Incr(metricActiveRooms)
	cs.log.Printf("user %q created room %q (%s)", c.user.Name(), room.Name(), room.ID())
	c.queueMessage(protocol.NewCreatedRoom(room.Name()))
}

func (cs *ChatServer) handleRoomInfo(c *Client) {
	info, err := cs.registry.RoomInfo(c.user)
	if err != nil {
		c.queueMessage(protocol.NewRoomError(err.Error()))
		return
	}

	c.queueMessage(protocol.OkResult(info.String()))
}

// handleChat broadcasts a chat message to every current room member
// except the sender. The sender and room fields are taken from the
// server-side session, never trusted from the wire.
func (cs *ChatServer) handleChat(c *Client, chat *protocol.ChatMessage) {
	room := c.user.Room()
	if room == "" {
		c.queueMessage(protocol.NewRoomError(invalidAction("join a room to send messages").Error()))
		return
	}

	msg, err := protocol.NewChatMessage(c.user.Name(), chat.Content, room)
	if err != nil {
		if !errors.Is(err, protocol.ErrNotInRoom) {
			cs.log.Println("build chat message:", err)
		}
		c.queueMessage(protocol.NewRoomError("could not send message"))
		return
	}

	// Snapshot under the registry lock, send outside it.
	members := cs.registry.BroadcastSnapshot(room, c.user.ID())
	env := protocol.NewChat(msg)
	for _, member := range members {
		if !member.Send(env) {
			cs.log.Printf("dropped chat message for user %q", member.Name())
		}
	}

	cs.stats.Incr(metricMessagesSent)
}
