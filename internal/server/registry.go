package server

import (
	"sync"

	"github.com/rustic-reach/reach/internal/protocol"
)

// Registry is the server-wide collection of rooms and authenticated
// users, guarded by a single mutex. The lock is held for the full
// read-modify-write of membership state and released before any I/O:
// broadcasts take a snapshot under the lock and send outside it.
type Registry struct {
	mu              sync.Mutex
	rooms           map[string]*Room
	users           map[string]*User
	maxRooms        int
	deleteWhenEmpty bool
}

func NewRegistry(maxRooms int, deleteWhenEmpty bool) *Registry {
	return &Registry{
		rooms:           make(map[string]*Room, maxRooms),
		users:           make(map[string]*User),
		maxRooms:        maxRooms,
		deleteWhenEmpty: deleteWhenEmpty,
	}
}

// RegisterUser makes an authenticated user addressable by id.
func (reg *Registry) RegisterUser(u *User) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.users[u.ID()] = u
}

func (reg *Registry) DeregisterUser(u *User) {
	if u.ID() == "" {
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.users, u.ID())
}

func (reg *Registry) UserByID(id string) (*User, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	u, ok := reg.users[id]
	return u, ok
}

func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Room returns the room with the given name, if loaded.
func (reg *Registry) Room(name string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[name]
	return r, ok
}

// CreatePublicRoom creates a room joinable without a password.
func (reg *Registry) CreatePublicRoom(name string, capacity int, owner *User) (*Room, error) {
	return reg.createRoom(name, capacity, owner, "")
}

// CreatePrivateRoom creates a password-protected room. Only a hash of
// the password is stored.
func (reg *Registry) CreatePrivateRoom(name string, capacity int, owner *User, password string) (*Room, error) {
	if password == "" {
		return nil, invalidAction("private rooms require a password")
	}

	return reg.createRoom(name, capacity, owner, password)
}

func (reg *Registry) createRoom(name string, capacity int, owner *User, password string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.rooms) >= reg.maxRooms {
		return nil, ErrMaxRoomCount
	}

	if _, ok := reg.rooms[name]; ok {
		return nil, ErrNameOccupied
	}

	room, err := newRoom(owner, name, capacity)
	if err != nil {
		return nil, err
	}

	if password != "" {
		if err := room.setPassword(password); err != nil {
			return nil, err
		}
	}

	reg.rooms[name] = room
	return room, nil
}

// Join places the user in the named room, enforcing the password at
// the boundary. Joining the room the user already occupies is a no-op
// success. A user occupies at most one room: joining a different room
// leaves the current one first, under the same critical section.
// It reports whether the vacated room was deleted by the empty-room
// policy.
func (reg *Registry) Join(name string, u *User, password string) (bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[name]
	if !ok {
		return false, ErrRoomNotFound
	}

	if room.ContainsUser(u.ID()) {
		return false, nil
	}

	if room.HasPassword() {
		if password == "" {
			return false, ErrPasswordRequired
		}
		if !room.Authenticate(password) {
			return false, ErrWrongPassword
		}
	}

	if err := room.addMember(u); err != nil {
		return false, err
	}

	deleted := false
	if current := u.Room(); current != "" {
		deleted = reg.removeMembership(current, u)
	}

	u.setRoom(name)
	return deleted, nil
}

// Leave removes the user from its current room. It reports whether
// the room was deleted by the empty-room policy.
func (reg *Registry) Leave(u *User) (bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	current := u.Room()
	if current == "" {
		return false, invalidAction("you are not in any room")
	}

	deleted := reg.removeMembership(current, u)
	u.clearRoom()
	return deleted, nil
}

// removeMembership is called with the lock held.
func (reg *Registry) removeMembership(roomName string, u *User) bool {
	room, ok := reg.rooms[roomName]
	if !ok {
		return false
	}

	room.removeMember(u.ID())
	if reg.deleteWhenEmpty && room.MemberCount() == 0 {
		delete(reg.rooms, roomName)
		return true
	}

	return false
}

// DeleteRoom removes a room outright, independent of occupancy. Only
// the owner or a server admin may delete it. Occupants have their
// room cleared.
func (reg *Registry) DeleteRoom(name string, requester *User) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}

	if !room.OwnedBy(requester) && requester.Role() != RoleServerAdmin {
		return invalidAction("only the room owner may delete the room")
	}

	for _, member := range room.memberSnapshot("") {
		member.clearRoom()
	}

	delete(reg.rooms, name)
	return nil
}

// RoomInfo describes the room the user currently occupies.
func (reg *Registry) RoomInfo(u *User) (protocol.RoomInformation, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	current := u.Room()
	if current == "" {
		return protocol.RoomInformation{}, invalidAction("you are not in any room")
	}

	room, ok := reg.rooms[current]
	if !ok {
		return protocol.RoomInformation{}, ErrRoomNotFound
	}

	return room.info(reg.users[room.ownerID]), nil
}

// BroadcastSnapshot returns the members of the named room excluding
// exceptID, captured under the lock. Sends to the returned users
// happen outside the critical section; a member that leaves
// mid-broadcast simply does not receive the message.
func (reg *Registry) BroadcastSnapshot(roomName, exceptID string) []*User {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomName]
	if !ok {
		return nil
	}

	return room.memberSnapshot(exceptID)
}
