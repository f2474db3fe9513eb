package conversation

import "time"

// Sender values for a Turn.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Turn is one message in the advisory dialogue. Immutable once appended.
type Turn struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
