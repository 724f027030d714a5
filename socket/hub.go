package socket

import (
	"context"
	"encoding/json"
	"sync"

	"blogapi/internal/post/model"
	"blogapi/pkg/logger"
)

const (
	SubscribedType = "SUBSCRIBED" // Sent once when a subscriber is registered

	broadcastBuffer = 64
	sendBuffer      = 256
)

// WSMessage is a control message from the hub. Post changes are sent as model.PostEvent.
type WSMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id,omitempty"`
	PostID   int64  `json:"post_id,omitempty"`
}

// Hub fans post change events out to every connected subscriber.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan model.PostEvent
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan model.PostEvent, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing every
// subscriber's send channel on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

			// Confirm the subscription so the client knows events will flow from here on.
			payload, _ := json.Marshal(WSMessage{Type: SubscribedType, ClientID: client.ID, PostID: client.PostID})
			client.Send <- payload
			logger.Sugar.Infof("Subscriber %s connected (post filter: %d)", client.ID, client.PostID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				logger.Sugar.Infof("Subscriber %s disconnected", client.ID)
			}
			h.mu.Unlock()

		case event := <-h.Broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling post event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(event.PostID) {
					continue
				}
				select {
				case client.Send <- payload:
				default:
					// The subscriber is lagging; drop it instead of blocking the hub.
					logger.Sugar.Warnf("Subscriber %s's send buffer is full. Dropping it.", client.ID)
					delete(h.clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues event for broadcast without blocking the caller. Events are
// dropped when the queue is full.
func (h *Hub) Publish(event model.PostEvent) {
	select {
	case h.Broadcast <- event:
	default:
		logger.Sugar.Warnf("Broadcast queue full, dropping %s event for post %d", event.Type, event.PostID)
	}
}

// ClientCount reports the number of registered subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
