package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/mossy-p/p2p-relay/config"
	"github.com/mossy-p/p2p-relay/internal/models"
)

func newTestMirror(t *testing.T) (*Mirror, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	m, err := Connect(config.RedisConfig{Host: srv.Host(), Port: srv.Port()}, nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return m, srv
}

func TestMirror_RoomChanged(t *testing.T) {
	m, srv := newTestMirror(t)

	m.RoomChanged("x", models.RoomStatus{HasSender: true})
	m.RoomChanged("x", models.RoomStatus{HasSender: true, HasReceiver: true})
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	key := presenceKey("x")
	for field, want := range map[string]string{
		"hasSender":      "1",
		"hasReceiver":    "1",
		"filesCompleted": "0",
	} {
		if got := srv.HGet(key, field); got != want {
			t.Errorf("HGET %s %s = %q, want %q", key, field, got, want)
		}
	}
	if ttl := srv.TTL(key); ttl != roomTTL {
		t.Errorf("TTL(%s) = %v, want %v", key, ttl, roomTTL)
	}
	if ok, _ := srv.SIsMember(activeRoomsKey, "x"); !ok {
		t.Error("room x missing from active set")
	}
}

func TestMirror_RoomRemoved(t *testing.T) {
	m, srv := newTestMirror(t)

	m.RoomChanged("x", models.RoomStatus{HasSender: true})
	m.RoomChanged("y", models.RoomStatus{HasReceiver: true})
	m.RoomRemoved("x")
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if srv.Exists(presenceKey("x")) {
		t.Error("presence for x should be deleted")
	}
	members, err := srv.Members(activeRoomsKey)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if len(members) != 1 || members[0] != "y" {
		t.Errorf("active rooms = %v, want [y]", members)
	}
}

func TestMirror_UpdatesAfterCloseAreDropped(t *testing.T) {
	m, srv := newTestMirror(t)
	m.Close()

	m.RoomChanged("x", models.RoomStatus{HasSender: true})

	if srv.Exists(presenceKey("x")) {
		t.Error("update after Close should be dropped")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host, port := srv.Host(), srv.Port()
	srv.Close()

	if _, err := Connect(config.RedisConfig{Host: host, Port: port}, nil); err == nil {
		t.Fatal("Connect() to a closed server should fail")
	}
}
