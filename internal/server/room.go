package server

import (
	"fmt"

	"github.com/teris-io/shortid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rustic-reach/reach/internal/protocol"
)

// Room is a named, capacity-bounded membership set. It carries no
// lock of its own: all mutation happens under the Registry's lock.
type Room struct {
	id           string
	ownerID      string
	name         string
	capacity     int
	members      map[string]*User
	passwordHash string
}

func newRoom(owner *User, name string, capacity int) (*Room, error) {
	if capacity <= 0 {
		return nil, invalidAction("room capacity must be positive")
	}

	id, err := shortid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate room id: %w", err)
	}

	return &Room{
		id:       id,
		ownerID:  owner.ID(),
		name:     name,
		capacity: capacity,
		members:  make(map[string]*User),
	}, nil
}

// setPassword stores a hash of the plaintext; the plaintext itself is
// never retained.
func (r *Room) setPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash room password: %w", err)
	}

	r.passwordHash = string(hash)
	return nil
}

func (r *Room) HasPassword() bool {
	return r.passwordHash != ""
}

// Authenticate reports whether the input proves knowledge of the room
// password. A room without a password accepts any input.
func (r *Room) Authenticate(plain string) bool {
	if !r.HasPassword() {
		return true
	}

	return bcrypt.CompareHashAndPassword([]byte(r.passwordHash), []byte(plain)) == nil
}

func (r *Room) ID() string   { return r.id }
func (r *Room) Name() string { return r.name }

func (r *Room) Capacity() int    { return r.capacity }
func (r *Room) MemberCount() int { return len(r.members) }

func (r *Room) OwnedBy(u *User) bool {
	return u.ID() != "" && r.ownerID == u.ID()
}

func (r *Room) ContainsUser(userID string) bool {
	_, ok := r.members[userID]
	return ok
}

func (r *Room) addMember(u *User) error {
	if _, ok := r.members[u.ID()]; ok {
		return ErrUserExists
	}

	if len(r.members) >= r.capacity {
		return ErrMaxCapacityReached
	}

	r.members[u.ID()] = u
	return nil
}

func (r *Room) removeMember(userID string) {
	delete(r.members, userID)
}

// memberSnapshot returns the current members, excluding exceptID.
// Callers take it under the registry lock and send outside it.
func (r *Room) memberSnapshot(exceptID string) []*User {
	members := make([]*User, 0, len(r.members))
	for id, u := range r.members {
		if id == exceptID {
			continue
		}
		members = append(members, u)
	}

	return members
}

func (r *Room) info(owner *User) protocol.RoomInformation {
	names := make([]string, 0, len(r.members))
	for _, u := range r.members {
		names = append(names, u.Name())
	}

	ownerName := defaultDisplayName
	if owner != nil {
		ownerName = owner.Name()
	}

	return protocol.RoomInformation{
		UsersCount:        len(r.members),
		RoomSize:          r.capacity,
		RoomOwnerUsername: ownerName,
		CurrentUsers:      names,
	}
}
