package socket

import (
	"net/http"
	"strconv"
	"time"

	"blogapi/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may subscribe, same as the CORS policy on the REST routes.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	PostID int64 // 0 subscribes to every post
	Send   chan []byte
}

func (c *Client) wants(postID int64) bool {
	return c.PostID == 0 || c.PostID == postID
}

// ServeWs upgrades the request to a websocket and registers a subscriber.
// The optional postId query parameter limits events to a single post.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	var postID int64
	if raw := r.URL.Query().Get("postId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "Invalid postId parameter", http.StatusBadRequest)
			return
		}
		postID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		Hub:    hub,
		Conn:   conn,
		PostID: postID,
		Send:   make(chan []byte, sendBuffer),
	}

	select {
	case hub.Register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only watches for the peer going away; subscribers have nothing to say.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		}
	}
}
