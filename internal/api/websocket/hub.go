package websocket

import (
	"log"
	"sync"
	"time"
)

// Hub керує підключеними dashboard-клієнтами та розсилає pipeline-події
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	mu sync.RWMutex
}

// Event pipeline-подія що стрімиться клієнтам
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🔌 WebSocket client connected. Total clients: %d", h.GetClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("🔌 WebSocket client disconnected. Total clients: %d", len(h.clients))
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Буфер клієнта переповнений - відключаємо
					close(client.send)
					delete(h.clients, client)
					log.Printf("⚠️ Client send buffer full, disconnecting")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast ставить подію в чергу розсилки
func (h *Hub) Broadcast(eventType string, data interface{}) {
	event := &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
		log.Printf("⚠️ Broadcast channel full, event dropped")
	}
}

// BroadcastDealAnalyzed шле подію аналізу угоди
func (h *Hub) BroadcastDealAnalyzed(data interface{}) {
	h.Broadcast("deal.analyzed", data)
}

// BroadcastDealAdvanced шле подію переходу стадії
func (h *Hub) BroadcastDealAdvanced(data interface{}) {
	h.Broadcast("deal.advanced", data)
}

// BroadcastSweepCompleted шле підсумок нічного sweep
func (h *Hub) BroadcastSweepCompleted(data interface{}) {
	h.Broadcast("portfolio.sweep", data)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
