package server

import (
	"context"
	"log"
	"sync"

	"github.com/rustic-reach/reach/internal/stats"
)

const (
	metricActiveClients = "NumActiveClients"
	metricActiveRooms   = "NumActiveRooms"
	metricMessagesSent  = "NumMessagesSent"
)

// Options carries the room policy and greeting the server applies to
// every connection.
type Options struct {
	DefaultRoomCapacity int
	WelcomeMessage      string
}

// ChatServer tracks all live connections and dispatches their
// messages against the shared room registry.
type ChatServer struct {
	log         *log.Logger
	registry    *Registry
	stats       stats.StatsProvider
	opts        Options
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
}

func NewChatServer(logger *log.Logger, registry *Registry, su stats.StatsProvider, opts Options) (*ChatServer, error) {
	if opts.DefaultRoomCapacity <= 0 {
		return nil, invalidAction("default room capacity must be positive")
	}

	for _, m := range []string{metricActiveClients, metricActiveRooms, metricMessagesSent} {
		su.RegisterMetric(m)
	}

	return &ChatServer{
		log:      logger,
		registry: registry,
		stats:    su,
		opts:     opts,
		clients:  make(map[*Client]struct{}),
	}, nil
}

func (cs *ChatServer) Registry() *Registry {
	return cs.registry
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	cs.clients[c] = struct{}{}
	cs.stats.Incr(metricActiveClients)
}

func (cs *ChatServer) removeClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	if _, ok := cs.clients[c]; !ok {
		return
	}

	delete(cs.clients, c)
	cs.stats.Decr(metricActiveClients)
}

// disconnect runs the full cleanup for a closed connection: leave the
// current room (empty-room policy applies), drop the user from the
// registry, deregister the connection.
func (cs *ChatServer) disconnect(c *Client) {
	if c.user.Room() != "" {
		if deleted, err := cs.registry.Leave(c.user); err == nil && deleted {
			cs.stats.Decr(metricActiveRooms)
		}
	}

	cs.registry.DeregisterUser(c.user)
	cs.removeClient(c)
	cs.log.Printf("removed connection %q (%s)", c.connID, c.user.Name())
}

// Shutdown stops every live connection. It returns early when the
// context expires.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Println("shutting down chat server")

	done := make(chan struct{})
	go func() {
		cs.clientsLock.Lock()
		for c := range cs.clients {
			c.stopClient()
		}
		cs.clientsLock.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
