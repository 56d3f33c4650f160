package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/rustic-reach/reach/internal/config"
	"github.com/rustic-reach/reach/internal/protocol"
)

const (
	inputBufferSize   = 16
	inboundBufferSize = 64
	noticeBufferSize  = 32
)

// Runtime merges three event sources into one control loop: lines
// typed on the terminal, envelopes arriving from the server, and
// locally queued notices. All channels are bounded; a slow loop
// blocks the producers instead of growing memory.
type Runtime struct {
	log       *log.Logger
	conn      wsConn
	cfg       *config.ClientConfig
	out       io.Writer
	state     State
	input     chan string
	inbound   chan *protocol.ServerMessage
	notices   chan string
	done      chan struct{}
	closeOnce sync.Once
}

func NewRuntime(conn wsConn, cfg *config.ClientConfig, logger *log.Logger, out io.Writer) *Runtime {
	return &Runtime{
		log:     logger,
		conn:    conn,
		cfg:     cfg,
		out:     out,
		state:   State{UserName: cfg.UserName},
		input:   make(chan string, inputBufferSize),
		inbound: make(chan *protocol.ServerMessage, inboundBufferSize),
		notices: make(chan string, noticeBufferSize),
		done:    make(chan struct{}),
	}
}

// Run drives the session until the connection closes, input ends, or
// the user types /exit. The connection is closed on the way out.
func (rt *Runtime) Run(in io.Reader) error {
	defer rt.conn.Close()
	defer rt.closeDone()

	go rt.readLoop()
	go rt.inputLoop(in)

	// announce the configured display name
	if rt.cfg.UserName != "" {
		rt.sendEnvelope(&protocol.ClientMessage{
			BaseMessage: protocol.BaseMessage{Timestamp: protocol.Now()},
			Command:     &protocol.Command{Type: protocol.CmdSetName, Arg: rt.cfg.UserName},
		})
	}

	for {
		select {
		case line, ok := <-rt.input:
			if !ok {
				return nil
			}
			if exit := rt.handleLine(line); exit {
				return nil
			}
		case msg := <-rt.inbound:
			rt.handleServerMessage(msg)
		case notice := <-rt.notices:
			fmt.Fprintln(rt.out, notice)
		case <-rt.done:
			return nil
		}
	}
}

// readLoop is the only reader of the connection. A transport error is
// connection-fatal; an undecodable frame is dropped with a notice.
func (rt *Runtime) readLoop() {
	for {
		_, raw, err := rt.conn.ReadMessage()
		if err != nil {
			rt.log.Println("connection closed:", err)
			rt.closeDone()
			return
		}

		var msg protocol.ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			rt.notice("[error] failed to parse server message")
			continue
		}

		select {
		case rt.inbound <- &msg:
		case <-rt.done:
			return
		}
	}
}

// inputLoop collects terminal lines on a dedicated goroutine because
// reading stdin blocks.
func (rt *Runtime) inputLoop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case rt.input <- scanner.Text():
		case <-rt.done:
			return
		}
	}

	close(rt.input)
}

func (rt *Runtime) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if protocol.IsCommand(line) {
		return rt.handleCommand(line)
	}

	rt.sendChat(line)
	return false
}

func (rt *Runtime) handleCommand(line string) bool {
	// /exit is local-only: no server round-trip.
	if line == "/exit" {
		fmt.Fprintln(rt.out, "[info] disconnecting...")
		return true
	}

	cmd, ok := protocol.ParseCommand(line)
	if !ok {
		fmt.Fprintln(rt.out, "[error] unknown command")
		return false
	}

	switch cmd.Type {
	case protocol.CmdJoinRoom:
		cmd.Arg = rt.cfg.ResolveRoomAlias(cmd.Arg)
		rt.state.PendingRoom = cmd.Arg
	case protocol.CmdLeaveRoom:
		rt.state.PendingRoom = ""
	}

	rt.sendEnvelope(&protocol.ClientMessage{
		BaseMessage: protocol.BaseMessage{Timestamp: protocol.Now()},
		Command:     cmd,
	})
	return false
}

func (rt *Runtime) sendChat(line string) {
	msg, err := protocol.NewChatMessage(rt.state.UserName, line, rt.state.Room)
	if err != nil {
		fmt.Fprintln(rt.out, "[error] please join a room!")
		return
	}

	rt.sendEnvelope(&protocol.ClientMessage{
		BaseMessage: protocol.BaseMessage{Timestamp: msg.Timestamp},
		Chat:        msg,
	})

	// the server excludes the sender from the broadcast, so render
	// our own message locally
	rt.renderChat(msg)
}

func (rt *Runtime) handleServerMessage(msg *protocol.ServerMessage) {
	switch {
	case msg.CommandResult != nil:
		res := msg.CommandResult
		if res.Success {
			// only the join's own ack confirms the pending room; a
			// /help or /room reply racing the join must not. Join
			// failures arrive as RoomError, which rolls it back.
			if rt.state.PendingRoom != "" && res.Message == protocol.JoinedRoomAck(rt.state.PendingRoom) {
				rt.state.Room = rt.state.PendingRoom
				rt.state.PendingRoom = ""
			}
			fmt.Fprintln(rt.out, "[info]", res.Message)
		} else {
			fmt.Fprintln(rt.out, "[error]", res.Message)
		}
	case msg.StateUpdate != nil:
		su := msg.StateUpdate
		if su.Username != "" {
			rt.state.UserName = su.Username
		}
		rt.state.Room = su.Room
		fmt.Fprintln(rt.out, "[info]", su.Message)
	case msg.Chat != nil:
		rt.renderChat(msg.Chat)
	case msg.RoomError != nil:
		rt.state.PendingRoom = ""
		fmt.Fprintln(rt.out, "[error]", msg.RoomError.Message)
	case msg.CreatedRoom != nil:
		fmt.Fprintln(rt.out, "[info] created room", msg.CreatedRoom.Name)
	case msg.Authenticated != nil:
		fmt.Fprintln(rt.out, "[info] authenticated")
	default:
		rt.log.Println("ignoring unrecognized server message")
	}
}

func (rt *Runtime) renderChat(msg *protocol.ChatMessage) {
	fmt.Fprintf(rt.out, "%s <%s> %s\n", msg.Timestamp.Local().Format("15:04:05"), msg.Sender, msg.Content)
}

func (rt *Runtime) sendEnvelope(env *protocol.ClientMessage) {
	if err := rt.conn.WriteJSON(env); err != nil {
		rt.log.Println("send failed:", err)
		rt.closeDone()
	}
}

// notice queues a display line from a producer goroutine.
func (rt *Runtime) notice(text string) {
	select {
	case rt.notices <- text:
	case <-rt.done:
	}
}

func (rt *Runtime) closeDone() {
	rt.closeOnce.Do(func() { close(rt.done) })
}
