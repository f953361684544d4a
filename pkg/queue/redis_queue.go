package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// 事件类型
const (
	EventApprovalAction = "approval/action" // 审批动作事件
	EventMessageSend    = "message/send"    // 站内消息发送事件
)

// RedisQueue Redis事件队列
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// EventMessage 队列中的事件消息
type EventMessage struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	TenantID  uint                   `json:"tenant_id"`
	UserID    uint                   `json:"user_id"`  // 触发人ID
	Username  string                 `json:"username"` // 触发人用户名
	Payload   map[string]interface{} `json:"payload"`
	Created   int64                  `json:"created"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "riveredge:queue"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

// NewRedisQueueWithClient 使用已有连接创建队列实例（测试用）
func NewRedisQueueWithClient(client *redis.Client, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "riveredge:queue"
	}
	return &RedisQueue{client: client, prefix: prefix}
}

// GetClient 获取底层Redis客户端（用于Pub/Sub等场景）
func (q *RedisQueue) GetClient() *redis.Client {
	return q.client
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) getQueueKey(eventType string) string {
	return fmt.Sprintf("%s:%s", q.prefix, eventType)
}

// NotifyChannelKey 站内消息实时推送的Pub/Sub频道名
func NotifyChannelKey(tenantID, userID uint) string {
	return fmt.Sprintf("notify:inapp:%d:%d", tenantID, userID)
}

// PublishNotification 向指定用户的通知频道广播一条消息（Pub/Sub，无订阅者时静默丢弃）
func (q *RedisQueue) PublishNotification(tenantID, userID uint, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化通知消息失败: %v", err)
	}
	return q.client.Publish(context.Background(), NotifyChannelKey(tenantID, userID), data).Err()
}

// Publish 发布事件到队列
func (q *RedisQueue) Publish(eventType string, tenantID, userID uint, username string, payload map[string]interface{}) (string, error) {
	ctx := context.Background()

	message := EventMessage{
		EventID:   uuid.New().String(),
		EventType: eventType,
		TenantID:  tenantID,
		UserID:    userID,
		Username:  username,
		Payload:   payload,
		Created:   time.Now().Unix(),
	}

	data, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("序列化事件消息失败: %v", err)
	}

	// 左侧入队
	if err := q.client.LPush(ctx, q.getQueueKey(eventType), data).Err(); err != nil {
		return "", fmt.Errorf("事件入队失败: %v", err)
	}

	return message.EventID, nil
}

// Consume 阻塞消费指定类型的事件，超时返回nil
func (q *RedisQueue) Consume(ctx context.Context, eventType string, timeout time.Duration) (*EventMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.getQueueKey(eventType)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}

	var message EventMessage
	if err := json.Unmarshal([]byte(result[1]), &message); err != nil {
		return nil, fmt.Errorf("反序列化事件消息失败: %v", err)
	}

	return &message, nil
}

// QueueLength 获取队列长度
func (q *RedisQueue) QueueLength(eventType string) (int64, error) {
	ctx := context.Background()
	return q.client.LLen(ctx, q.getQueueKey(eventType)).Result()
}
