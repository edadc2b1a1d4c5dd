package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is one inbound user utterance. Fields are set once at construction
// and never mutated by validators or handlers.
type Message struct {
	ID      string
	UserID  string
	RoomID  string
	AgentID string
	Text    string
	At      time.Time
}

func New(userID, roomID, agentID, text string) Message {
	return Message{
		ID:      uuid.NewString(),
		UserID:  userID,
		RoomID:  roomID,
		AgentID: agentID,
		Text:    text,
		At:      time.Now().UTC(),
	}
}

// Reply is the agent's answer to a message. Action is empty for provider
// replies; TxHash and Root are set only by the mutating actions.
type Reply struct {
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
	TxHash string `json:"tx_hash,omitempty"`
	Root   string `json:"withdrawal_root,omitempty"`
}
