package conversation

import (
	"time"

	"github.com/insureassist/backend/internal/model/policy"
)

// Session is the caller-visible snapshot of one advisory conversation.
// Turns are in append order; Offers stay empty until the terminal step.
type Session struct {
	ID          string         `json:"id"`
	Turns       []Turn         `json:"turns"`
	Requirement Requirement    `json:"requirement"`
	Step        int            `json:"step"`
	Offers      []policy.Offer `json:"offers"`
	Busy        bool           `json:"busy"`
	Prompt      string         `json:"prompt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
