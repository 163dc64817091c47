package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whatsapp-responder/internal/whatsapp"

	"github.com/rs/zerolog"
)

// Sender is the outbound side of the engine, implemented by *whatsapp.Client.
type Sender interface {
	SendMessage(ctx context.Context, to, body string) error
	SendButton(ctx context.Context, to, bodyText, buttonText, url string) error
	SendMenu(ctx context.Context, to, bodyText string, buttons []whatsapp.MenuButton) error
	MarkAsRead(ctx context.Context, messageID string) error
}

// Recorder keeps an audit trail of processed messages. It never influences
// classification.
type Recorder interface {
	RecordIncoming(ctx context.Context, in Incoming)
	RecordAutomation(ctx context.Context, in Incoming, res Result)
}

type Engine struct {
	Sender   Sender
	Rules    *Rules
	Recorder Recorder
	Logger   zerolog.Logger
}

func NewEngine(sender Sender, rules *Rules, logger zerolog.Logger) *Engine {
	return &Engine{
		Sender: sender,
		Rules:  rules,
		Logger: logger.With().Str("component", "automation").Logger(),
	}
}

// Result describes what the engine did with one message.
type Result struct {
	// Category is the matched rule name, empty when the fallback fired.
	Category string
	Action   ActionType
	ReadErr  error
	ReplyErr error
}

func (r Result) Fallback() bool {
	return r.Category == ""
}

// Err joins the read receipt and reply errors.
func (r Result) Err() error {
	return errors.Join(r.ReadErr, r.ReplyErr)
}

// ProcessIncomingMessage marks the message read, then sends exactly one reply:
// the action of the first matching category, or the fallback.
func (e *Engine) ProcessIncomingMessage(ctx context.Context, in Incoming) Result {
	logger := e.Logger.With().Str("from", in.From).Str("message_id", in.MessageID).Logger()
	logger.Info().Str("type", in.Type).Str("text", in.Text).Msg("processing incoming message")

	if e.Recorder != nil {
		e.Recorder.RecordIncoming(ctx, in)
	}

	var res Result
	if err := e.Sender.MarkAsRead(ctx, in.MessageID); err != nil {
		res.ReadErr = fmt.Errorf("mark as read: %w", err)
	}

	action := e.Rules.Fallback
	if rule, ok := e.Rules.Match(in.Text); ok {
		logger.Info().Str("category", rule.Name).Msg("rule matched")
		res.Category = rule.Name
		action = rule.Action
	} else {
		logger.Info().Msg("no rule matched, sending fallback")
	}
	res.Action = action.Type

	if err := e.execute(ctx, in, action); err != nil {
		res.ReplyErr = fmt.Errorf("send %s reply: %w", action.Type, err)
	}

	if e.Recorder != nil {
		e.Recorder.RecordAutomation(ctx, in, res)
	}
	return res
}

func (e *Engine) execute(ctx context.Context, in Incoming, action Action) error {
	text := expand(action.Text, in)

	switch action.Type {
	case ActionText:
		return e.Sender.SendMessage(ctx, in.From, text)
	case ActionButton:
		return e.Sender.SendButton(ctx, in.From, text, action.ButtonText, action.URL)
	case ActionMenu:
		return e.Sender.SendMenu(ctx, in.From, text, action.Buttons)
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// expand replaces message variables in a reply text.
func expand(text string, in Incoming) string {
	text = strings.ReplaceAll(text, "{{contact_name}}", in.From)
	text = strings.ReplaceAll(text, "{{message}}", in.Text)
	return text
}
