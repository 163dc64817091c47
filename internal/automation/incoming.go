package automation

import (
	"strings"

	"whatsapp-responder/pkg/models"
)

// Incoming is the part of an inbound message the engine classifies.
type Incoming struct {
	From      string
	MessageID string
	Type      string
	// Text is the lower-cased comparison string: the text body, or the id of
	// the tapped button or list row.
	Text string
}

// ExtractIncoming pulls the first message out of payload. ok is false when
// the payload carries no message (status updates, malformed events).
func ExtractIncoming(payload *models.WebhookPayload) (Incoming, bool) {
	msg, ok := payload.FirstMessage()
	if !ok {
		return Incoming{}, false
	}

	in := Incoming{
		From:      msg.From,
		MessageID: msg.ID,
		Type:      msg.Type,
	}

	switch msg.Type {
	case "text":
		if msg.Text != nil {
			in.Text = msg.Text.Body
		}
	case "interactive":
		if msg.Interactive != nil {
			switch {
			case msg.Interactive.ButtonReply != nil:
				in.Text = msg.Interactive.ButtonReply.ID
			case msg.Interactive.ListReply != nil:
				in.Text = msg.Interactive.ListReply.ID
			}
		}
	}

	in.Text = strings.ToLower(in.Text)
	return in, true
}
