package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventConnected              = "connected"
	EventItinerarySaved         = "itinerary_saved"
	EventItineraryPersistFailed = "itinerary_persist_failed"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Relay пересылает события другим экземплярам сервиса.
type Relay interface {
	Forward(ctx context.Context, userID uuid.UUID, event Event) error
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
	relay       Relay
	logger      *slog.Logger
}

// NewHub создает хаб для SSE-подписок.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
		logger:      logger,
	}
}

// SetRelay подключает пересылку событий между экземплярами.
func (h *Hub) SetRelay(relay Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.relay = relay
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(ch)
		})
	}
}

// Publish доставляет событие локальным подписчикам и пересылает его через relay.
func (h *Hub) Publish(ctx context.Context, userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()
	h.Deliver(userID, event)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay == nil {
		return
	}
	if err := relay.Forward(ctx, userID, event); err != nil {
		h.logger.Warn("event relay failed",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}

// Deliver отправляет событие только подписчикам этого экземпляра. Медленный
// подписчик с заполненным буфером событие пропускает.
func (h *Hub) Deliver(userID uuid.UUID, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[userID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
