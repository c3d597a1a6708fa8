// Package stream fans classified journey events out to subscribed clients.
// It is the notification sink of the tracking engine: the engine hands it
// (kind, intensity) tuples and has no knowledge of how they are presented.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"backend-rollpath/internal/engine"

	"github.com/redis/go-redis/v9"
)

// EventMessage is the wire form of one classified event.
type EventMessage struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Intensity string `json:"intensity"`
	Direction string `json:"direction,omitempty"`
	AtMs      int64  `json:"at_ms"`
}

type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(sessionID string) *Client {
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionClients, ok := h.clients[client.SessionID]; ok {
		delete(sessionClients, client)
		if len(sessionClients) == 0 {
			delete(h.clients, client.SessionID)
		}
	}
	close(client.Send)
}

// PublishEvent broadcasts one classified event for a session.
func (h *Hub) PublishEvent(sessionID string, e engine.Event) {
	payload, _ := json.Marshal(EventMessage{
		SessionID: sessionID,
		Kind:      string(e.Kind),
		Intensity: e.Intensity,
		Direction: e.Direction,
		AtMs:      e.AtMs,
	})
	h.Broadcast(sessionID, payload)
}

func (h *Hub) Broadcast(sessionID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[sessionID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), journeyChannel(sessionID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "journey:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		sessionID := sessionIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[sessionID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func journeyChannel(sessionID string) string {
	return "journey:" + sessionID + ":events"
}

func sessionIDFromChannel(ch string) string {
	// journey:{session}:events
	const prefix = "journey:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
