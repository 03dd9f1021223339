package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Origin string    `json:"origin"`
	UserID uuid.UUID `json:"user_id"`
	Event  Event     `json:"event"`
}

// RedisBridge связывает хабы нескольких экземпляров через канал Redis Pub/Sub.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
	logger  *slog.Logger
}

// NewRedisBridge создает мост для хаба. Собственные сообщения экземпляра
// отбрасываются при получении.
func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *slog.Logger) *RedisBridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		logger:  logger,
	}
}

// Forward публикует событие в канал Redis.
func (b *RedisBridge) Forward(ctx context.Context, userID uuid.UUID, event Event) error {
	data, err := json.Marshal(envelope{Origin: b.origin, UserID: userID, Event: event})
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, data).Err()
}

// Run слушает канал до отмены контекста.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("event bridge listening", slog.String("channel", b.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := b.handle(msg.Payload); err != nil {
				b.logger.Warn("event bridge message dropped", slog.String("error", err.Error()))
			}
		}
	}
}

func (b *RedisBridge) handle(payload string) error {
	var msg envelope
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if msg.Origin == b.origin {
		return nil
	}

	b.hub.Deliver(msg.UserID, msg.Event)
	return nil
}
