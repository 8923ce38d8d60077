package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 统一的 WebSocket 消息协议（通过 Redis Pub/Sub 转发给前端）。
const (
	TypeApplicationStatus   = "application_status"
	TypeApplicationReceived = "application_received"
)

// Message is the JSON frame delivered to a user's websocket.
type Message struct {
	Type          string    `json:"type"`
	ApplicationID uint      `json:"application_id"`
	JobID         uint      `json:"job_id"`
	JobTitle      string    `json:"job_title,omitempty"`
	Status        string    `json:"status,omitempty"`
	ApplicantName string    `json:"applicant_name,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

// Publisher delivers a message to a single user.
type Publisher interface {
	Publish(ctx context.Context, userID uint, msg Message) error
}

// Channel returns the pub/sub channel a user's sockets subscribe to.
func Channel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}

// RedisPublisher publishes over redis pub/sub.
type RedisPublisher struct {
	client redis.UniversalClient
}

func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uint, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := Channel(userID)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
