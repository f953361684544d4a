package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*RedisQueue, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisQueueWithClient(client, "test:queue"), client
}

func TestPublishConsume(t *testing.T) {
	q, _ := newTestQueue(t)

	eventID, err := q.Publish(EventMessageSend, 1, 7, "admin", map[string]interface{}{
		"message_uuid": "abc",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, eventID)

	msg, err := q.Consume(context.Background(), EventMessageSend, time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, eventID, msg.EventID)
	assert.Equal(t, EventMessageSend, msg.EventType)
	assert.Equal(t, uint(1), msg.TenantID)
	assert.Equal(t, uint(7), msg.UserID)
	assert.Equal(t, "admin", msg.Username)
	assert.Equal(t, "abc", msg.Payload["message_uuid"])
}

func TestConsumeEmptyQueue(t *testing.T) {
	q, _ := newTestQueue(t)

	msg, err := q.Consume(context.Background(), EventApprovalAction, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestQueueLength(t *testing.T) {
	q, _ := newTestQueue(t)

	for i := 0; i < 3; i++ {
		_, err := q.Publish(EventApprovalAction, 1, 0, "", nil)
		require.NoError(t, err)
	}

	length, err := q.QueueLength(EventApprovalAction)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestNotifyChannelKey(t *testing.T) {
	assert.Equal(t, "notify:inapp:1:7", NotifyChannelKey(1, 7))
}

func TestPublishNotification(t *testing.T) {
	q, client := newTestQueue(t)

	ctx := context.Background()
	pubsub := client.Subscribe(ctx, NotifyChannelKey(1, 7))
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)
	ch := pubsub.Channel()

	require.NoError(t, q.PublishNotification(1, 7, map[string]interface{}{"subject": "工单已派发"}))

	select {
	case msg := <-ch:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
		assert.Equal(t, "工单已派发", payload["subject"])
	case <-time.After(2 * time.Second):
		t.Fatal("未收到通知消息")
	}
}
