package signaling

import (
	"encoding/json"

	"github.com/mossy-p/p2p-relay/internal/models"
)

// HandleMessage decodes one inbound envelope and runs the matching handler.
// Frames that cannot be decoded are dropped; peers are never told why.
func (r *Router) HandleMessage(connID string, msg models.Envelope) {
	switch msg.Event {
	case models.EventJoinRoom:
		var req models.JoinRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			r.log.Debugf("Bad join-room from %s: %v", connID, err)
			r.ack(connID, msg.ID, false)
			return
		}
		r.Join(connID, req.RoomID, models.Role(req.Role), func(ok bool) {
			r.ack(connID, msg.ID, ok)
		})

	case models.EventSignal:
		var req models.SignalRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			r.log.Debugf("Bad signal from %s: %v", connID, err)
			return
		}
		r.Signal(connID, req.RoomID, req.Signal)

	case models.EventChunkReceived:
		var req models.ChunkReceivedRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			r.log.Debugf("Bad chunk-received from %s: %v", connID, err)
			return
		}
		r.ChunkReceived(connID, req.RoomID, req.ChunkID)

	case models.EventFilesCompleted:
		if roomID, ok := r.roomRef(connID, msg); ok {
			r.FilesCompleted(connID, roomID)
		}

	case models.EventLeaveRoom:
		if roomID, ok := r.roomRef(connID, msg); ok {
			r.Leave(connID, roomID)
		}

	default:
		r.log.Debugf("Unknown event %q from %s", msg.Event, connID)
	}
}

// HandleDisconnect is called once when a connection goes away.
func (r *Router) HandleDisconnect(connID string) {
	r.Disconnect(connID)
}

// roomRef accepts the room ID either as a bare string or as {"roomId": ...}.
func (r *Router) roomRef(connID string, msg models.Envelope) (string, bool) {
	var roomID string
	if err := json.Unmarshal(msg.Data, &roomID); err == nil {
		return roomID, true
	}
	var ref models.RoomRef
	if err := json.Unmarshal(msg.Data, &ref); err != nil {
		r.log.Debugf("Bad %s from %s: %v", msg.Event, connID, err)
		return "", false
	}
	return ref.RoomID, true
}

func (r *Router) ack(connID string, id *uint64, ok bool) {
	if id == nil {
		return
	}
	r.transport.Reply(connID, *id, ok)
}
