package client

// State is the client's local view of the world: the display name and
// room it believes the server has for it. Room changes are applied on
// server acknowledgement; PendingRoom tracks a join awaiting its
// reply.
type State struct {
	UserName    string
	Room        string
	PendingRoom string
}
