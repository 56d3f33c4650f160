package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rustic-reach/reach/internal/protocol"
	"github.com/rustic-reach/reach/internal/stats"
	"github.com/rustic-reach/reach/internal/testutil"
)

func TestNewChatServer(t *testing.T) {
	t.Run("registers metrics", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		su.On("RegisterMetric", metricActiveClients)
		su.On("RegisterMetric", metricActiveRooms)
		su.On("RegisterMetric", metricMessagesSent)

		_, err := NewChatServer(testutil.TestLogger(t), NewRegistry(8, true), su, Options{DefaultRoomCapacity: 5})
		assert.NoError(t, err, "expected no error")
		su.AssertExpectations(t)
	})

	t.Run("rejects a non-positive default capacity", func(t *testing.T) {
		su := &stats.MockStatsUpdater{}
		su.On("RegisterMetric", mock.Anything)

		_, err := NewChatServer(testutil.TestLogger(t), NewRegistry(8, true), su, Options{})
		assert.ErrorIs(t, err, ErrInvalidAction, "expected the capacity to be validated")
	})
}

func TestRegisterClient(t *testing.T) {
	cs := newTestChatServer(t, Options{DefaultRoomCapacity: 5})
	c := newConnectedClient(t, cs)

	cs.RegisterClient(c)
	_, ok := cs.clients[c]
	assert.True(t, ok, "expected the client to be tracked")

	su := cs.stats.(*stats.MockStatsUpdater)
	su.AssertCalled(t, "Incr", metricActiveClients)

	cs.removeClient(c)
	_, ok = cs.clients[c]
	assert.False(t, ok, "expected the client to be dropped")
	su.AssertCalled(t, "Decr", metricActiveClients)

	// Removing an untracked client must not decrement again.
	cs.removeClient(c)
	su.AssertNumberOfCalls(t, "Decr", 1)
}

func TestDisconnect(t *testing.T) {
	cs := newTestChatServer(t, Options{DefaultRoomCapacity: 5})
	c := newConnectedClient(t, cs)
	cs.RegisterClient(c)
	authenticate(t, cs, c, "token-a")

	cs.handleMessage(c, commandEnvelope(protocol.CmdCreateRoom, "lobby"))
	nextMessage(t, c)
	cs.handleMessage(c, commandEnvelope(protocol.CmdJoinRoom, "lobby"))
	nextMessage(t, c)

	cs.disconnect(c)

	assert.Zero(t, cs.Registry().RoomCount(), "expected the emptied room to be deleted")
	_, ok := cs.Registry().UserByID(c.user.ID())
	assert.False(t, ok, "expected the user to be deregistered")
	_, ok = cs.clients[c]
	assert.False(t, ok, "expected the client to be dropped")

	su := cs.stats.(*stats.MockStatsUpdater)
	su.AssertCalled(t, "Decr", metricActiveRooms)
}

func TestShutdown(t *testing.T) {
	cs := newTestChatServer(t, Options{DefaultRoomCapacity: 5})
	a := newConnectedClient(t, cs)
	b := newConnectedClient(t, cs)
	cs.RegisterClient(a)
	cs.RegisterClient(b)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, cs.Shutdown(ctx), "expected the shutdown to complete")

	for _, c := range []*Client{a, b} {
		select {
		case <-c.stop:
		default:
			t.Fatal("expected the client to be stopped")
		}
	}
}
