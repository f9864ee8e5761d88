// Package line is the boundary to the LINE Messaging API: inbound webhook
// envelope types, signature verification, and the outbound messaging client.
package line

// Webhook event kinds handled by the bot. Everything else is a no-op.
const (
	EventTypeMessage = "message"
	EventTypeFollow  = "follow"
)

// MessageTypeText is the only inbound message type the bot interprets.
const MessageTypeText = "text"

// SignatureHeader carries the HMAC-SHA256 digest of the raw request body.
const SignatureHeader = "X-Line-Signature"

// CallbackRequest is the webhook envelope: one delivery, many events.
type CallbackRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event. Fields other than Type are populated
// depending on the event kind; consumers must treat them as optional.
type Event struct {
	Type           string          `json:"type"`
	WebhookEventID string          `json:"webhookEventId,omitempty"`
	ReplyToken     string          `json:"replyToken,omitempty"`
	Timestamp      int64           `json:"timestamp,omitempty"`
	Source         *Source         `json:"source,omitempty"`
	Message        *MessageContent `json:"message,omitempty"`
}

// Source identifies the sender of an event.
type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// MessageContent is the message payload of a message event.
type MessageContent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text,omitempty"`
}

// UserID returns the sender's user id, or "" when the event carries none.
func (e *Event) UserID() string {
	if e.Source == nil {
		return ""
	}
	return e.Source.UserID
}

// QuickReply is one selectable button under an outbound message. Tapping it
// resubmits Text as if the user typed it.
type QuickReply struct {
	Label string
	Text  string
}

// TextMessage is an outbound text message with optional quick-reply buttons.
type TextMessage struct {
	Text         string
	QuickReplies []QuickReply
}

// Profile holds the optional display attributes the platform exposes for a
// user. All fields may be empty; never assume presence.
type Profile struct {
	DisplayName   string
	PictureURL    string
	StatusMessage string
}
