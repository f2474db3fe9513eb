package conversation

import (
	"github.com/insureassist/backend/internal/model/conversation"
	"github.com/insureassist/backend/internal/model/policy"
)

// EventType tags what a session event carries.
type EventType string

const (
	// EventTurn carries one newly appended turn.
	EventTurn EventType = "turn"
	// EventOffers carries the freshly generated offers.
	EventOffers EventType = "offers"
	// EventReset signals that the session was restarted.
	EventReset EventType = "reset"
)

// Event is pushed to subscribers as deferred work lands on a session, so
// SSE and websocket transports can forward bot activity as it happens.
type Event struct {
	Type   EventType          `json:"type"`
	Step   int                `json:"step"`
	Turn   *conversation.Turn `json:"turn,omitempty"`
	Offers []policy.Offer     `json:"offers,omitempty"`
}
