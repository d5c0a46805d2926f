package signaling

import "github.com/mossy-p/p2p-relay/internal/models"

// Observer is told about every room state change after it happens. Calls
// are made while the router lock is held, so implementations must not block.
type Observer interface {
	RoomChanged(roomID string, status models.RoomStatus)
	RoomRemoved(roomID string)
}

type nopObserver struct{}

func (nopObserver) RoomChanged(string, models.RoomStatus) {}
func (nopObserver) RoomRemoved(string) {}
