package handler

import (
	"fmt"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SSEHandler handles SSE connections
type SSEHandler struct {
	hub       *sse.Hub
	keepalive time.Duration
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, keepalive: 30 * time.Second}
}

// Stream handles the SSE endpoint
// GET /api/v1/sse/events?token=xxx&session_id=xxx
// session_id 经 Session 中间件与登录用户绑定
func (h *SSEHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		Error(c, 50300, "event stream disabled")
		return
	}

	sessionID := GetSessionID(c)
	clientID := uuid.New().String()

	client := &sse.Client{
		ID:        clientID,
		SessionID: sessionID,
		Events:    make(chan sse.Event, 64),
	}

	h.hub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString(fmt.Sprintf("event: connected\ndata: {\"client_id\":%q,\"session_id\":%q}\n\n", clientID, sessionID))
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.keepalive)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", event.EventType, event.Data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
