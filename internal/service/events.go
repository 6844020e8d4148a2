package service

import (
	"encoding/json"

	ws "backend/internal/websocket"
)

// broadcast pushes a JSON domain event to dashboard clients. The send
// is non-blocking: a saturated or absent hub drops the event rather
// than stalling the request.
func broadcast(hub *ws.Hub, event string, data interface{}) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		return
	}
	select {
	case hub.Broadcast <- payload:
	default:
	}
}
