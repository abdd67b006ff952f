package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID        string
	SessionID string
	Events    chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates a new SSE Hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("SSE client registered",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("SSE client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.deliver(client, event)
	}
}

// SendToSession 只发给指定会话的客户端
func (h *Hub) SendToSession(sessionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.SessionID == sessionID {
			h.deliver(client, event)
		}
	}
}

func (h *Hub) deliver(client *Client, event Event) {
	select {
	case client.Events <- event:
	default:
		h.logger.Warn("SSE client buffer full, skipping event",
			zap.String("client_id", client.ID),
			zap.String("event", event.EventType))
	}
}

func (h *Hub) encode(eventType string, payload interface{}) (Event, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("SSE payload marshal failed", zap.String("event", eventType), zap.Error(err))
		return Event{}, false
	}
	return Event{EventType: eventType, Data: string(data)}, true
}

// Publish 序列化payload并广播
func (h *Hub) Publish(eventType string, payload interface{}) {
	if event, ok := h.encode(eventType, payload); ok {
		h.Broadcast(event)
	}
}

// PublishToSession 序列化payload并只推给该会话
func (h *Hub) PublishToSession(sessionID, eventType string, payload interface{}) {
	if event, ok := h.encode(eventType, payload); ok {
		h.SendToSession(sessionID, event)
	}
}

// 事件类型
const (
	EventLotEdit        = "lot_edit"        // 行内编辑状态变化
	EventRegisterReload = "register_reload" // 登记表需要刷新（新建批次后）
)
