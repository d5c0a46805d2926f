package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mossy-p/p2p-relay/internal/middleware"
	"github.com/mossy-p/p2p-relay/internal/models"
)

// RoomService is the part of the signaling router the HTTP surface needs.
type RoomService interface {
	Occupancy(roomID string) models.Occupancy
	Rooms() []models.RoomInfo
	CloseRoom(roomID string) bool
}

// GetRoom reports who currently occupies a room. Unknown rooms are reported
// as empty rather than 404 so clients can poll before anyone joins.
func GetRoom(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, rooms.Occupancy(c.Param("roomId")))
	}
}

// ListRooms returns every live room (operators only)
func ListRooms(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rooms.Rooms()})
	}
}

// CloseRoom force-disconnects a room's members and removes it (operators only)
func CloseRoom(rooms RoomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if !rooms.CloseRoom(roomID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}

		log.Printf("Room %s closed by operator %s", roomID, c.GetString(middleware.OperatorKey))
		c.JSON(http.StatusOK, gin.H{"message": "Room closed"})
	}
}
