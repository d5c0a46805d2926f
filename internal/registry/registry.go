// Package registry holds the in-memory room table shared by the signaling
// handlers. It performs no locking of its own; callers serialize access.
package registry

import (
	"sort"

	"github.com/mossy-p/p2p-relay/internal/models"
)

// Room tracks the two occupants of a rendezvous and its completion flag.
// Empty Sender/Receiver means the role is vacant.
type Room struct {
	ID             string
	Sender         string
	Receiver       string
	FilesCompleted bool
}

// Empty reports whether both roles are vacant.
func (r *Room) Empty() bool {
	return r.Sender == "" && r.Receiver == ""
}

// Holds reports whether connID occupies either role.
func (r *Room) Holds(connID string) bool {
	return connID != "" && (r.Sender == connID || r.Receiver == connID)
}

// Occupant returns the connection holding role, or "".
func (r *Room) Occupant(role models.Role) string {
	switch role {
	case models.RoleSender:
		return r.Sender
	case models.RoleReceiver:
		return r.Receiver
	}
	return ""
}

func (r *Room) Status() models.RoomStatus {
	return models.RoomStatus{
		HasSender:      r.Sender != "",
		HasReceiver:    r.Receiver != "",
		FilesCompleted: r.FilesCompleted,
	}
}

// Registry maps room IDs to rooms and keeps a reverse index from a
// connection to the rooms it occupies.
type Registry struct {
	rooms  map[string]*Room
	byConn map[string]map[string]struct{}
}

func New() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Get returns the room or nil.
func (g *Registry) Get(roomID string) *Room {
	return g.rooms[roomID]
}

// GetOrCreate returns the existing room or inserts a vacant one.
func (g *Registry) GetOrCreate(roomID string) (*Room, bool) {
	if room, ok := g.rooms[roomID]; ok {
		return room, false
	}
	room := &Room{ID: roomID}
	g.rooms[roomID] = room
	return room, true
}

// Delete removes the room and drops it from its occupants' index entries.
func (g *Registry) Delete(roomID string) {
	room, ok := g.rooms[roomID]
	if !ok {
		return
	}
	delete(g.rooms, roomID)
	g.unbind(room.Sender, roomID)
	g.unbind(room.Receiver, roomID)
}

// Assign records connID in role and indexes it.
func (g *Registry) Assign(room *Room, role models.Role, connID string) {
	switch role {
	case models.RoleSender:
		room.Sender = connID
	case models.RoleReceiver:
		room.Receiver = connID
	default:
		return
	}
	g.bind(connID, room.ID)
}

// Vacate clears role in room. The index entry goes away once connID holds
// neither role there.
func (g *Registry) Vacate(room *Room, role models.Role) {
	var connID string
	switch role {
	case models.RoleSender:
		connID, room.Sender = room.Sender, ""
	case models.RoleReceiver:
		connID, room.Receiver = room.Receiver, ""
	default:
		return
	}
	if !room.Holds(connID) {
		g.unbind(connID, room.ID)
	}
}

// RoomsOf returns the IDs of rooms where connID holds a role, sorted.
func (g *Registry) RoomsOf(connID string) []string {
	set := g.byConn[connID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Registry) Len() int {
	return len(g.rooms)
}

// Each calls fn for every room in ID order.
func (g *Registry) Each(fn func(*Room)) {
	ids := make([]string, 0, len(g.rooms))
	for id := range g.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fn(g.rooms[id])
	}
}

func (g *Registry) bind(connID, roomID string) {
	if connID == "" {
		return
	}
	set, ok := g.byConn[connID]
	if !ok {
		set = make(map[string]struct{})
		g.byConn[connID] = set
	}
	set[roomID] = struct{}{}
}

func (g *Registry) unbind(connID, roomID string) {
	set, ok := g.byConn[connID]
	if !ok {
		return
	}
	delete(set, roomID)
	if len(set) == 0 {
		delete(g.byConn, connID)
	}
}
