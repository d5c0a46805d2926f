// Package signaling routes rendezvous events between the sender and
// receiver of a room.
//
// Every handler runs under one router-wide lock, so the check-then-assign
// steps of a join and the sweep of a disconnect are atomic with respect to
// each other and to the delayed cleanup. Outbound delivery through the
// Transport must be non-blocking.
package signaling

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/mossy-p/p2p-relay/internal/models"
	"github.com/mossy-p/p2p-relay/internal/registry"
)

// DefaultCleanupDelay is how long a completed room lives before members are
// told to disconnect.
const DefaultCleanupDelay = 2 * time.Second

var (
	ErrInvalidRole = errors.New("signaling: invalid role")
	ErrRoleTaken   = errors.New("signaling: role already occupied")
)

// Transport delivers events to connections and room groups. Delivery to an
// unknown connection or group is a silent no-op.
type Transport interface {
	Send(connID, event string, data any)
	Broadcast(roomID, event string, data any)
	Reply(connID string, id uint64, data any)
	JoinGroup(connID, roomID string)
}

type RouterConfig struct {
	// Registry holds room state. A fresh one is created if nil.
	Registry *registry.Registry

	Transport Transport

	// Scheduler runs delayed cleanups. Defaults to time.AfterFunc.
	Scheduler Scheduler

	// CleanupDelay defaults to DefaultCleanupDelay if 0.
	CleanupDelay time.Duration

	// Observer is optional.
	Observer Observer

	// LoggerFactory is optional; logging is disabled if nil.
	LoggerFactory logging.LoggerFactory
}

type Router struct {
	mu        sync.Mutex
	rooms     *registry.Registry
	transport Transport
	scheduler Scheduler
	delay     time.Duration
	observer  Observer
	cleanups  map[string]*pendingCleanup
	log       logging.LeveledLogger
}

func NewRouter(config RouterConfig) *Router {
	r := &Router{
		rooms:     config.Registry,
		transport: config.Transport,
		scheduler: config.Scheduler,
		delay:     config.CleanupDelay,
		observer:  config.Observer,
		cleanups:  make(map[string]*pendingCleanup),
	}
	if r.rooms == nil {
		r.rooms = registry.New()
	}
	if r.scheduler == nil {
		r.scheduler = clockScheduler{}
	}
	if r.delay <= 0 {
		r.delay = DefaultCleanupDelay
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}

	factory := config.LoggerFactory
	if factory == nil {
		f := logging.NewDefaultLoggerFactory()
		f.DefaultLogLevel = logging.LogLevelDisabled
		factory = f
	}
	r.log = factory.NewLogger("signaling")

	return r
}

// Join tries to place connID in role. respond receives the acknowledgment
// before the room-update broadcast goes out.
func (r *Router) Join(connID, roomID string, role models.Role, respond func(bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !role.Valid() {
		r.log.Debugf("join %s rejected: invalid role %q from %s", roomID, role, connID)
		respond(false)
		return ErrInvalidRole
	}

	room := r.rooms.Get(roomID)
	if room != nil {
		if occupant := room.Occupant(role); occupant != "" {
			r.log.Debugf("join %s rejected: %s already held by %s", roomID, role, occupant)
			respond(false)
			return ErrRoleTaken
		}
	} else {
		room, _ = r.rooms.GetOrCreate(roomID)
		r.log.Infof("Created room %s", roomID)
	}

	r.rooms.Assign(room, role, connID)
	if role == models.RoleReceiver && room.Sender != "" {
		r.transport.Send(room.Sender, models.EventPeerJoined, nil)
	}

	r.transport.JoinGroup(connID, roomID)
	respond(true)

	status := room.Status()
	r.transport.Broadcast(roomID, models.EventRoomUpdate, status)
	r.observer.RoomChanged(roomID, status)

	r.log.Infof("Connection %s joined room %s as %s", connID, roomID, role)
	return nil
}

// Signal relays payload from one occupant to the other, untouched.
func (r *Router) Signal(connID, roomID string, payload json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms.Get(roomID)
	if room == nil {
		return
	}

	target := room.Sender
	if connID == room.Sender {
		target = room.Receiver
	}
	if target == "" {
		r.log.Debugf("signal in %s from %s dropped: no counterpart", roomID, connID)
		return
	}

	r.log.Tracef("Relaying signal from %s to %s in room %s", connID, target, roomID)
	r.transport.Send(target, models.EventSignal, payload)
}

// FilesCompleted marks the transfer done and schedules the room's removal.
// Only the sender may call it.
func (r *Router) FilesCompleted(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms.Get(roomID)
	if room == nil || room.Sender != connID {
		return
	}

	room.FilesCompleted = true
	r.transport.Broadcast(roomID, models.EventTransferCompleted, nil)
	r.observer.RoomChanged(roomID, room.Status())
	r.log.Infof("Transfer completed in room %s", roomID)

	if _, pending := r.cleanups[roomID]; pending {
		return
	}
	p := &pendingCleanup{}
	p.timer = r.scheduler.AfterFunc(r.delay, func() { r.expire(roomID, p) })
	r.cleanups[roomID] = p
}

func (r *Router) expire(roomID string, p *pendingCleanup) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cleanups[roomID] != p {
		return
	}
	delete(r.cleanups, roomID)

	if r.rooms.Get(roomID) == nil {
		return
	}
	r.transport.Broadcast(roomID, models.EventForceDisconnect, nil)
	r.deleteRoom(roomID)
	r.log.Infof("Room %s closed after completion", roomID)
}

// ChunkReceived forwards the receiver's acknowledgment to the sender.
func (r *Router) ChunkReceived(connID, roomID string, chunkID json.Number) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms.Get(roomID)
	if room == nil || room.Receiver != connID {
		return
	}
	if room.Sender != "" {
		r.transport.Send(room.Sender, models.EventChunkAck, chunkID)
	}
}

// Leave clears the caller's role in the room. The sender slot is checked
// first and at most one slot is cleared. No room-update is broadcast.
func (r *Router) Leave(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms.Get(roomID)
	if room == nil {
		return
	}

	switch connID {
	case room.Sender:
		r.rooms.Vacate(room, models.RoleSender)
	case room.Receiver:
		r.rooms.Vacate(room, models.RoleReceiver)
	default:
		return
	}
	r.log.Infof("Connection %s left room %s", connID, roomID)
	r.settle(room)
}

// Disconnect releases every role held by connID.
func (r *Router) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, roomID := range r.rooms.RoomsOf(connID) {
		room := r.rooms.Get(roomID)
		if room == nil {
			continue
		}
		if room.Sender == connID {
			r.rooms.Vacate(room, models.RoleSender)
		}
		if room.Receiver == connID {
			r.rooms.Vacate(room, models.RoleReceiver)
		}
		r.settle(room)
	}
}

// CloseRoom tells every member to disconnect and removes the room.
func (r *Router) CloseRoom(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms.Get(roomID) == nil {
		return false
	}
	r.transport.Broadcast(roomID, models.EventForceDisconnect, nil)
	r.deleteRoom(roomID)
	r.log.Infof("Room %s closed by operator", roomID)
	return true
}

// Occupancy reports who is in the room without changing anything.
func (r *Router) Occupancy(roomID string) models.Occupancy {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms.Get(roomID)
	if room == nil {
		return models.Occupancy{}
	}
	return models.Occupancy{
		HasSender:   room.Sender != "",
		HasReceiver: room.Receiver != "",
	}
}

func (r *Router) Rooms() []models.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]models.RoomInfo, 0, r.rooms.Len())
	r.rooms.Each(func(room *registry.Room) {
		infos = append(infos, models.RoomInfo{RoomID: room.ID, RoomStatus: room.Status()})
	})
	return infos
}

// settle deletes room if it emptied, otherwise reports the new state.
func (r *Router) settle(room *registry.Room) {
	if room.Empty() {
		r.deleteRoom(room.ID)
		return
	}
	r.observer.RoomChanged(room.ID, room.Status())
}

func (r *Router) deleteRoom(roomID string) {
	if p, ok := r.cleanups[roomID]; ok {
		p.timer.Stop()
		delete(r.cleanups, roomID)
	}
	r.rooms.Delete(roomID)
	r.observer.RoomRemoved(roomID)
	r.log.Infof("Removed room %s", roomID)
}
