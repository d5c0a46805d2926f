package models

// Role a connection may hold in a room
type Role string

const (
	RoleSender   Role = "sender"
	RoleReceiver Role = "receiver"
)

// Valid reports whether r is one of the two tracked roles.
func (r Role) Valid() bool {
	return r == RoleSender || r == RoleReceiver
}

// RoomStatus is broadcast to the room group as room-update
type RoomStatus struct {
	HasSender      bool `json:"hasSender"`
	HasReceiver    bool `json:"hasReceiver"`
	FilesCompleted bool `json:"filesCompleted"`
}

// Occupancy is the public answer to GET /rooms/:roomId
type Occupancy struct {
	HasSender   bool `json:"hasSender"`
	HasReceiver bool `json:"hasReceiver"`
}

// RoomInfo is one entry of the admin room listing
type RoomInfo struct {
	RoomID string `json:"roomId"`
	RoomStatus
}
