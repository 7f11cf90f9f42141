package webhook

// Payload is the body LINE posts to the webhook endpoint: an ordered batch
// of events.
type Payload struct {
	Destination string  `json:"destination,omitempty"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken,omitempty"`
	Message    Message `json:"message,omitempty"`
	Source     Source  `json:"source,omitempty"`
	Timestamp  int64   `json:"timestamp,omitempty"`
}

type Message struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

type Source struct {
	Type    string `json:"type,omitempty"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// IsTextMessage reports whether this event carries a user text message, the
// only event shape the pipeline processes.
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}
