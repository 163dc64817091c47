package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"whatsapp-responder/internal/config"
)

// Maximum response body size kept on an API error.
const maxErrorBodySize = 2048

// Recorder receives every attempted outgoing reply. Read receipts are not recorded.
type Recorder interface {
	RecordOutgoing(ctx context.Context, to, messageID, content, msgType string, sendErr error)
}

type Client struct {
	Config     *config.Config
	HTTPClient *http.Client
	Recorder   Recorder
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: cfg.WhatsAppTimeout},
	}
}

// --- Helper Functions ---

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", c.Config.GraphBaseURL, c.Config.PhoneNumberID)
}

func (c *Client) sendRequest(ctx context.Context, op string, body interface{}) (*SendResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, &SendError{Op: op, Kind: KindEncode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messagesURL(), bytes.NewReader(jsonData))
	if err != nil {
		return nil, &SendError{Op: op, Kind: KindInvalid, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &SendError{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, newAPIError(op, resp.StatusCode, respBody)
	}

	var sendResp SendResponse
	// A 2xx with an unexpected body still counts as delivered.
	_ = json.NewDecoder(resp.Body).Decode(&sendResp)
	return &sendResp, nil
}

// --- Messaging Methods ---

// SendRawMessage posts msg and records the attempt.
func (c *Client) SendRawMessage(ctx context.Context, msg GenericMessage) error {
	if msg.MessagingProduct == "" {
		msg.MessagingProduct = messagingProduct
	}
	op := "send " + describeType(msg)

	var resp *SendResponse
	var err error
	if msg.To == "" {
		err = &SendError{Op: op, Kind: KindInvalid, Err: fmt.Errorf("recipient is required")}
	} else {
		resp, err = c.sendRequest(ctx, op, msg)
	}

	if c.Recorder != nil {
		c.Recorder.RecordOutgoing(ctx, msg.To, resp.MessageID(), describeContent(msg), msg.Type, err)
	}
	return err
}

// SendMessage sends a plain text message.
func (c *Client) SendMessage(ctx context.Context, to, body string) error {
	msg := GenericMessage{
		MessagingProduct: messagingProduct,
		To:               to,
		Type:             TypeText,
		Text: &TextObj{
			Body: body,
		},
	}
	return c.SendRawMessage(ctx, msg)
}

// SendButton sends a single call-to-action button that opens url.
func (c *Client) SendButton(ctx context.Context, to, bodyText, buttonText, url string) error {
	msg := GenericMessage{
		MessagingProduct: messagingProduct,
		To:               to,
		Type:             TypeInteractive,
		Interactive: &InteractiveObj{
			Type: InteractiveCTAURL,
			Body: BodyObj{Text: bodyText},
			Action: ActionObj{
				Name: InteractiveCTAURL,
				Parameters: &CTAParams{
					DisplayText: buttonText,
					URL:         url,
				},
			},
		},
	}
	return c.SendRawMessage(ctx, msg)
}

// SendMenu sends bodyText with up to MaxReplyButtons reply buttons.
func (c *Client) SendMenu(ctx context.Context, to, bodyText string, buttons []MenuButton) error {
	if len(buttons) == 0 || len(buttons) > MaxReplyButtons {
		return &SendError{
			Op:   "send menu",
			Kind: KindInvalid,
			Err:  fmt.Errorf("menu needs 1 to %d buttons, got %d", MaxReplyButtons, len(buttons)),
		}
	}

	objs := make([]ButtonObj, 0, len(buttons))
	for _, b := range buttons {
		objs = append(objs, ButtonObj{
			Type:  "reply",
			Reply: ReplyObj{ID: b.ID, Title: b.Title},
		})
	}

	msg := GenericMessage{
		MessagingProduct: messagingProduct,
		RecipientType:    "individual",
		To:               to,
		Type:             TypeInteractive,
		Interactive: &InteractiveObj{
			Type:   InteractiveButton,
			Body:   BodyObj{Text: bodyText},
			Action: ActionObj{Buttons: objs},
		},
	}
	return c.SendRawMessage(ctx, msg)
}

// MarkAsRead sends a read receipt for an inbound message.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return &SendError{Op: "mark read", Kind: KindInvalid, Err: fmt.Errorf("message id is required")}
	}
	_, err := c.sendRequest(ctx, "mark read", ReadReceipt{
		MessagingProduct: messagingProduct,
		Status:           "read",
		MessageID:        messageID,
	})
	return err
}

func describeType(msg GenericMessage) string {
	if msg.Interactive != nil {
		return msg.Interactive.Type
	}
	return msg.Type
}

func describeContent(msg GenericMessage) string {
	switch {
	case msg.Text != nil:
		return msg.Text.Body
	case msg.Interactive != nil && msg.Interactive.Action.Parameters != nil:
		return msg.Interactive.Body.Text + "\n" + msg.Interactive.Action.Parameters.URL
	case msg.Interactive != nil:
		ids := make([]string, 0, len(msg.Interactive.Action.Buttons))
		for _, b := range msg.Interactive.Action.Buttons {
			ids = append(ids, b.Reply.ID)
		}
		return msg.Interactive.Body.Text + "\n[" + strings.Join(ids, ", ") + "]"
	default:
		return fmt.Sprintf("%s message", msg.Type)
	}
}
