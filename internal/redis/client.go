// Package redis mirrors room presence into Redis so dashboards and other
// processes can watch occupancy. The mirror is write-only: nothing is read
// back, and room state never survives a restart through it.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/redis/go-redis/v9"

	"github.com/mossy-p/p2p-relay/config"
	"github.com/mossy-p/p2p-relay/internal/models"
)

const (
	roomTTL        = 24 * time.Hour
	activeRoomsKey = "rooms:active"
	queueSize      = 1024
	writeTimeout   = 2 * time.Second
)

func presenceKey(roomID string) string {
	return "room:" + roomID + ":presence"
}

type update struct {
	roomID  string
	status  models.RoomStatus
	removed bool
}

// Mirror implements signaling.Observer on top of a Redis client. Updates are
// queued and written by a single goroutine, in order.
type Mirror struct {
	client  *redis.Client
	updates chan update
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	log     logging.LeveledLogger
}

// Connect dials Redis and starts the mirror's writer.
func Connect(cfg config.RedisConfig, loggerFactory logging.LoggerFactory) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewMirror(client, loggerFactory), nil
}

// NewMirror wraps an existing client and starts the writer.
func NewMirror(client *redis.Client, loggerFactory logging.LoggerFactory) *Mirror {
	if loggerFactory == nil {
		f := logging.NewDefaultLoggerFactory()
		f.DefaultLogLevel = logging.LogLevelDisabled
		loggerFactory = f
	}

	m := &Mirror{
		client:  client,
		updates: make(chan update, queueSize),
		done:    make(chan struct{}),
		log:     loggerFactory.NewLogger("presence"),
	}
	go m.run()
	return m
}

func (m *Mirror) RoomChanged(roomID string, status models.RoomStatus) {
	m.enqueue(update{roomID: roomID, status: status})
}

func (m *Mirror) RoomRemoved(roomID string) {
	m.enqueue(update{roomID: roomID, removed: true})
}

func (m *Mirror) enqueue(u update) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}
	select {
	case m.updates <- u:
	default:
		m.log.Warnf("Presence queue full, dropping update for room %s", u.roomID)
	}
}

// Close drains queued updates and closes the Redis connection.
func (m *Mirror) Close() error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.updates)
	}
	m.mu.Unlock()

	<-m.done
	return m.client.Close()
}

func (m *Mirror) run() {
	defer close(m.done)
	for u := range m.updates {
		if err := m.write(u); err != nil {
			m.log.Warnf("Failed to mirror room %s: %v", u.roomID, err)
		}
	}
}

func (m *Mirror) write(u update) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	key := presenceKey(u.roomID)
	pipe := m.client.TxPipeline()
	if u.removed {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, activeRoomsKey, u.roomID)
	} else {
		pipe.HSet(ctx, key,
			"hasSender", u.status.HasSender,
			"hasReceiver", u.status.HasReceiver,
			"filesCompleted", u.status.FilesCompleted,
		)
		pipe.Expire(ctx, key, roomTTL)
		pipe.SAdd(ctx, activeRoomsKey, u.roomID)
	}
	_, err := pipe.Exec(ctx)
	return err
}
