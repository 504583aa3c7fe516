package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Server to client event names.
const (
	EventNotifications = "notifications"
	EventNotification  = "notification"
	EventError         = "error"
)

// Client to server event names.
const (
	EventLeave = "leave"
)

// Envelope is the wire frame for every event in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload is the data carried by an "error" event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// parseSubjectID accepts the subject ID a client supplies in a leave payload,
// either as a JSON number or a quoted string.
func parseSubjectID(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty subject id")
	}

	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0, fmt.Errorf("invalid subject id: %s", raw)
	}
	parsed, err := strconv.ParseInt(asString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject id: %q", asString)
	}
	return parsed, nil
}
