// Package realtime delivers chat messages to connected websocket clients.
//
// Connections join named channels: one inbox per employee and one per
// room. Names carry the tenant so fan-out never crosses tenants.
package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Client → server events.
const (
	EventJoinUserChannel = "joinUserChannel"
	EventJoinRoomChannel = "joinRoomChannel"
	EventSendMessage     = "sendMessage"
)

// Server → client events.
const (
	EventMessageDelivered = "messageDelivered"
	EventSendError        = "sendError"
	EventJoined           = "joined"
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type errorPayload struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type joinedPayload struct {
	Channel string    `json:"channel"`
	ID      uuid.UUID `json:"id"`
}

// Encode renders an outbound frame once so it can be queued to many
// connections or handed to a broker without re-marshalling.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return frame, nil
}

func UserChannel(tenantID, userID uuid.UUID) string {
	return "tenant:" + tenantID.String() + ":user:" + userID.String()
}

func RoomChannel(tenantID, roomID uuid.UUID) string {
	return "tenant:" + tenantID.String() + ":room:" + roomID.String()
}
