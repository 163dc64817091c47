package models

// WebhookPayload represents the incoming JSON payload from WhatsApp
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Value ChangeValue `json:"value"`
	Field string      `json:"field"`
}

type ChangeValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []Contact        `json:"contacts,omitempty"`
	Messages []InboundMessage `json:"messages,omitempty"`
	Statuses []Status         `json:"statuses,omitempty"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// InboundMessage is a single user message. Only the field matching Type is set.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextBody           `json:"text,omitempty"`
	Interactive *InteractiveMessage `json:"interactive,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

// Status is a delivery/read receipt for a message we sent.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// InteractiveMessage represents an interactive message response (buttons, lists)
type InteractiveMessage struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"` // For button clicks
	ListReply   *ListReply   `json:"list_reply,omitempty"`   // For list selections
}

// ButtonReply represents a button click response
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListReply represents a list selection response
type ListReply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// FirstMessage returns entry[0].changes[0].value.messages[0], the only
// message the responder acts on. ok is false when the payload has no object
// or the path is absent.
func (p *WebhookPayload) FirstMessage() (msg InboundMessage, ok bool) {
	if p.Object == "" || len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return InboundMessage{}, false
	}
	messages := p.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 {
		return InboundMessage{}, false
	}
	return messages[0], true
}
