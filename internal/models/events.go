package models

import "fmt"

// Event names carried on the realtime channel. Session lifecycle events
// travel operator -> display on the broadcast topic; response events
// travel display -> operator on the session-scoped response topic.
type EventName string

const (
	EventSessionStarted   EventName = "session_started"
	EventSessionUpdate    EventName = "session_update"
	EventSessionCancelled EventName = "session_cancelled"
	EventSessionCompleted EventName = "session_completed"

	EventPasswordRequested  EventName = "password_requested"
	EventSignatureRequested EventName = "signature_requested"

	EventCustomerConfirmed  EventName = "customer_confirmed_data"
	EventPasswordSubmitted  EventName = "password_submitted"
	EventPasswordSkipped    EventName = "password_skipped"
	EventSignatureSubmitted EventName = "signature_submitted"
)

// SessionTopic is the operator -> display broadcast topic for a location.
func SessionTopic(locationID string) string {
	return fmt.Sprintf("display-session-%s", locationID)
}

// ResponseTopic is the display -> operator topic. Scoped per session so
// responses from one kiosk cannot be misattributed to a concurrent session
// at another kiosk under the same location.
func ResponseTopic(locationID, sessionID string) string {
	return fmt.Sprintf("intake-response-%s:%s", locationID, sessionID)
}

type ConfirmDataPayload struct {
	SessionID string `json:"session_id"`
	Confirmed bool   `json:"confirmed"`
}

type PasswordPayload struct {
	SessionID string `json:"session_id"`
	Value     string `json:"value,omitempty"`
}

type SignaturePayload struct {
	SessionID     string `json:"session_id"`
	SignatureData string `json:"signature_data"`
}
