package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustic-reach/reach/internal/protocol"
	"github.com/rustic-reach/reach/internal/testutil"
)

func TestQueueMessage(t *testing.T) {
	c := &Client{
		log:  testutil.TestLogger(t),
		send: make(chan *protocol.ServerMessage, 1),
	}

	assert.True(t, c.queueMessage(protocol.OkResult("one")), "expected the first message to queue")
	assert.False(t, c.queueMessage(protocol.OkResult("two")), "expected a full channel to drop")
	assert.Len(t, c.send, 1, "expected only the first message to remain queued")
}

func TestStopClient(t *testing.T) {
	c := &Client{stop: make(chan struct{})}

	c.stopClient()
	select {
	case <-c.stop:
	default:
		t.Fatal("expected the stop channel to be closed")
	}

	// A second stop must not panic on the closed channel.
	c.stopClient()
}
