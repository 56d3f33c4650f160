package server

import (
	"sync"
	"unicode/utf8"

	"github.com/rustic-reach/reach/internal/protocol"
)

// Role orders users by privilege. The lower the value, the more
// privileged the user (protection-ring ordering). Only RoleRegular is
// produced by the current command set.
type Role int

const (
	RoleServerAdmin Role = iota
	RoleRoomAdmin
	RoleRegular
)

// Ring returns the protection-ring ordinal of the role.
func (r Role) Ring() int {
	return int(r)
}

const (
	defaultDisplayName = "unknown"
	minDisplayNameLen  = 3
)

// session is the exclusively owned conduit for pushing envelopes to
// one connected peer. Only the owning connection writes to it.
type session interface {
	queueMessage(msg *protocol.ServerMessage) bool
}

// User is the per-connection identity and membership state. Room
// membership is reconciled only through Registry join/leave; User
// never mutates a Room directly.
type User struct {
	mu      sync.Mutex
	id      string
	name    string
	role    Role
	room    string
	session session
}

func NewUser(s session) *User {
	return &User{
		name:    defaultDisplayName,
		role:    RoleRegular,
		session: s,
	}
}

// SetID fixes the user's identity key. It is set exactly once; later
// calls are no-ops. It reports whether this call set the id.
func (u *User) SetID(id string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.id != "" {
		return false
	}

	u.id = id
	return true
}

func (u *User) ID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.id
}

func (u *User) SetName(name string) error {
	if utf8.RuneCountInString(name) < minDisplayNameLen {
		return invalidAction("user name must be at least 3 characters long")
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.name = name
	return nil
}

func (u *User) Name() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.name
}

func (u *User) Role() Role {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.role
}

func (u *User) Room() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.room
}

// setRoom and clearRoom are called only by the Registry while it
// holds its lock, so the user's room field and the room's member set
// cannot diverge.
func (u *User) setRoom(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.room = name
}

func (u *User) clearRoom() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.room = ""
}

// Send pushes an envelope onto the user's private outbound queue. A
// failed send (peer gone, queue full) is reported, never escalated.
func (u *User) Send(msg *protocol.ServerMessage) bool {
	if u.session == nil {
		return false
	}

	return u.session.queueMessage(msg)
}
