package client

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/rustic-reach/reach/internal/protocol"
)

// wsConn is the subset of the websocket connection the client runtime
// uses. The read side is owned by one goroutine at a time.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

// Authenticate performs the auth handshake: it sends the hash of the
// shared token and reads frames until the server acknowledges.
// Frames other than the acknowledgement are ignored; an explicit
// failure or a closed connection ends the session.
func Authenticate(conn wsConn, token string, logger *log.Logger) error {
	env := &protocol.ClientMessage{
		BaseMessage: protocol.BaseMessage{Timestamp: protocol.Now()},
		Command: &protocol.Command{
			Type: protocol.CmdAuthUser,
			Arg:  protocol.HashToken(token),
		},
	}

	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("send auth message: %w", err)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("connection closed during authentication: %w", err)
		}

		var msg protocol.ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Println("ignoring undecodable frame during auth:", err)
			continue
		}

		switch {
		case msg.Authenticated != nil:
			return nil
		case msg.CommandResult != nil && !msg.CommandResult.Success:
			return fmt.Errorf("authentication refused: %s", msg.CommandResult.Message)
		default:
			logger.Println("ignoring message during auth handshake")
		}
	}
}
