package answer

import "time"

// Turn is one question/answer exchange of a conversation.
type Turn struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

// ConversationContext carries the prior turns of a conversation, oldest first.
type ConversationContext struct {
	ConversationID string `json:"conversation_id"`
	Turns          []Turn `json:"turns"`
}

// Recent returns a copy of the last n turns, oldest first.
func (c ConversationContext) Recent(n int) []Turn {
	if n <= 0 || len(c.Turns) == 0 {
		return []Turn{}
	}
	start := len(c.Turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.Turns)-start)
	copy(out, c.Turns[start:])
	return out
}
