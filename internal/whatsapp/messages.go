package whatsapp

// --- Message Structures ---

const (
	messagingProduct = "whatsapp"

	TypeText        = "text"
	TypeInteractive = "interactive"

	InteractiveCTAURL = "cta_url"
	InteractiveButton = "button"

	// MaxReplyButtons is the Cloud API limit for reply buttons in one message.
	MaxReplyButtons = 3
)

type GenericMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type,omitempty"`
	To               string          `json:"to"`
	Type             string          `json:"type,omitempty"`
	Text             *TextObj        `json:"text,omitempty"`
	Interactive      *InteractiveObj `json:"interactive,omitempty"`
}

type TextObj struct {
	Body       string `json:"body"`
	PreviewUrl bool   `json:"preview_url,omitempty"`
}

type InteractiveObj struct {
	Type   string    `json:"type"`
	Body   BodyObj   `json:"body"`
	Action ActionObj `json:"action"`
}

type BodyObj struct {
	Text string `json:"text"`
}

type ActionObj struct {
	Buttons []ButtonObj `json:"buttons,omitempty"`
	// cta_url specific fields
	Name       string     `json:"name,omitempty"`
	Parameters *CTAParams `json:"parameters,omitempty"`
}

type CTAParams struct {
	DisplayText string `json:"display_text"`
	URL         string `json:"url"`
}

type ButtonObj struct {
	Type  string   `json:"type"`
	Reply ReplyObj `json:"reply"`
}

type ReplyObj struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReadReceipt marks an inbound message as read. It has no recipient.
type ReadReceipt struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// MenuButton is one reply button offered in a menu.
type MenuButton struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Title string `json:"title" yaml:"title" validate:"required"`
}

// SendResponse is the Graph API reply to a successful send.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Success bool `json:"success"`
}

// MessageID returns the wamid assigned to the sent message, if any.
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}
