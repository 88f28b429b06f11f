package models

import (
	"maps"
	"time"
)

// Intent is the classifier's tag for what the user wants.
type Intent string

const (
	IntentCreate  Intent = "create"
	IntentView    Intent = "view"
	IntentUpdate  Intent = "update"
	IntentDelete  Intent = "delete"
	IntentSearch  Intent = "search"
	IntentHelp    Intent = "help"
	IntentUnknown Intent = "unknown"
)

// ChatRequest is the payload of POST /chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Classification is what the Intent Classification Service answers for one message.
// Action and Error are carried on the wire but not interpreted by the assistant.
type Classification struct {
	Success  bool              `json:"success"`
	Response string            `json:"response"`
	Intent   Intent            `json:"intent,omitempty"`
	Action   string            `json:"action,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Sender identifies who wrote a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ActionKind names the affordance rendered under a bot message.
type ActionKind string

const (
	ActionCreateAppointment ActionKind = "create_appointment"
	ActionViewAppointments  ActionKind = "view_appointments"
	ActionConfirm           ActionKind = "confirm_action"
)

// BoundAction is attached to a bot message when it is built and never changes after.
type BoundAction struct {
	Kind    ActionKind        `json:"kind"`
	Payload map[string]string `json:"payload,omitempty"`
}

// Message is one immutable transcript entry.
type Message struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Sender    Sender       `json:"sender"`
	Timestamp time.Time    `json:"timestamp"`
	Action    *BoundAction `json:"boundAction,omitempty"`
}

// Clone returns a copy of m that shares no bound action or payload with it.
func (m Message) Clone() Message {
	if m.Action != nil {
		a := *m.Action
		a.Payload = maps.Clone(m.Action.Payload)
		m.Action = &a
	}
	return m
}
