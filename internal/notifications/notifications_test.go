package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"studyhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.PublishNotification(context.Background(), &models.Notification{UserID: 1}))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(uint, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))

	id, ok := ParseUserChannel("notifications:user:42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"notifications:user:", "notifications:user:abc", "chat:conv:1", "notifications:user:0"} {
		_, ok := ParseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestHub_WiringDeliversToUserStreams(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	mine, err := hub.Register(7)
	require.NoError(t, err)
	other, err := hub.Register(8)
	require.NoError(t, err)

	notification := &models.Notification{ID: 3, UserID: 7, Content: "Ada liked your post", Type: models.NotificationLike}
	require.NoError(t, n.PublishNotification(context.Background(), notification))

	var frame []byte
	require.Eventually(t, func() bool {
		select {
		case frame = <-mine.C:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)

	var event struct {
		Type    string              `json:"type"`
		Payload models.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame, &event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, "Ada liked your post", event.Payload.Content)

	assert.Never(t, func() bool {
		select {
		case <-other.C:
			return true
		default:
			return false
		}
	}, 10*testPollInterval, testPollInterval)
}

func TestHub_RegisterLimitsAndUnregister(t *testing.T) {
	hub := NewHub()

	streams := make([]*Stream, 0, maxStreamsPerUser)
	for i := 0; i < maxStreamsPerUser; i++ {
		s, err := hub.Register(1)
		require.NoError(t, err)
		streams = append(streams, s)
	}
	_, err := hub.Register(1)
	assert.ErrorIs(t, err, ErrUserStreamLimit)
	assert.Equal(t, maxStreamsPerUser, hub.Connected(1))

	hub.Unregister(streams[0])
	hub.Unregister(streams[0])
	assert.Equal(t, maxStreamsPerUser-1, hub.Connected(1))

	_, open := <-streams[0].C
	assert.False(t, open)
}

func TestHub_ShutdownClosesStreams(t *testing.T) {
	hub := NewHub()
	s, err := hub.Register(5)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, open := <-s.C
	assert.False(t, open)

	_, err = hub.Register(5)
	assert.ErrorIs(t, err, ErrHubClosed)

	hub.Unregister(s)
	hub.Broadcast(5, "ignored")
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	s, err := hub.Register(9)
	require.NoError(t, err)

	for i := 0; i < cap(s.send)+5; i++ {
		hub.Broadcast(9, "x")
	}
	assert.Len(t, s.C, cap(s.send))
}
