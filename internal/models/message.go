package models

import "encoding/json"

// Event names carried in the envelope's "event" field.
const (
	// Client to server
	EventJoinRoom       = "join-room"
	EventFilesCompleted = "files-completed"
	EventSignal         = "signal"
	EventChunkReceived  = "chunk-received"
	EventLeaveRoom      = "leave-room"

	// Server to client
	EventAck               = "ack"
	EventPeerJoined        = "peer-joined"
	EventRoomUpdate        = "room-update"
	EventChunkAck          = "chunk-ack"
	EventTransferCompleted = "transfer-completed"
	EventForceDisconnect   = "force-disconnect"
)

// Envelope is a single websocket frame in either direction.
type Envelope struct {
	Event string          `json:"event"`
	ID    *uint64         `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomRequest is the payload of a join-room event.
type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
	Role   string `json:"role"`
}

// SignalRequest carries an opaque negotiation payload for the counterpart.
type SignalRequest struct {
	RoomID string          `json:"roomId"`
	Signal json.RawMessage `json:"signal"`
}

// ChunkReceivedRequest acknowledges a chunk on behalf of the receiver.
type ChunkReceivedRequest struct {
	RoomID  string      `json:"roomId"`
	ChunkID json.Number `json:"chunkId"`
}

// RoomRef is the object form of the room-only events.
type RoomRef struct {
	RoomID string `json:"roomId"`
}
