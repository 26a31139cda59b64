package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/lexigrade/api/internal/model"
)

// Client represents a WebSocket client subscribed to one article
type Client struct {
	ArticleID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by article ID
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to article subscribers
	broadcast chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	ArticleID string
	Message   []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.ArticleID] == nil {
				h.clients[client.ArticleID] = make(map[*Client]bool)
			}
			h.clients[client.ArticleID][client] = true
			h.mu.Unlock()
			log.Printf("Client registered for article %s", client.ArticleID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ArticleID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.ArticleID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unregistered from article %s", client.ArticleID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.ArticleID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyProgress pushes the article's phase and chunk progress to all
// its subscribers. Implements the pipeline notifier.
func (h *Hub) NotifyProgress(article *model.Article) {
	msg := model.WSProgressMessage{
		Type:            model.WSMessageTypeProgress,
		ArticleID:       article.ID,
		Status:          article.Status,
		CompletedChunks: article.CompletedChunks,
		TotalChunks:     article.TotalChunks,
	}
	h.send(article.ID, msg)
}

// NotifyComplete pushes a completion message to all article subscribers
func (h *Hub) NotifyComplete(article *model.Article) {
	msg := model.WSCompleteMessage{
		Type:      model.WSMessageTypeComplete,
		ArticleID: article.ID,
		Result: map[string]interface{}{
			"title":       article.Title,
			"wordCount":   article.WordCount,
			"totalChunks": article.TotalChunks,
		},
	}
	h.send(article.ID, msg)
}

// NotifyError pushes a failure message to all article subscribers
func (h *Hub) NotifyError(article *model.Article) {
	msg := model.WSErrorMessage{
		Type:      model.WSMessageTypeError,
		ArticleID: article.ID,
	}
	if article.Error != nil {
		msg.Code = article.Error.Code
		msg.Message = article.Error.Message
		msg.Retryable = article.Error.Retryable
	}
	h.send(article.ID, msg)
}

func (h *Hub) send(articleID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal websocket message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		ArticleID: articleID,
		Message:   data,
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, articleID string) {
	client := &Client{
		ArticleID: articleID,
		Conn:      c,
		Send:      make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Handle client messages (ping/pong)
		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data
		}
	}
}
