package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"whatsapp-responder/internal/automation"
	"whatsapp-responder/internal/config"
	"whatsapp-responder/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventReceived is the acknowledgment body for every POST.
const EventReceived = "EVENT_RECEIVED"

// maxBodySize caps the webhook payload read into memory.
const maxBodySize = 1 << 20

// Processor classifies and answers one inbound message.
type Processor interface {
	ProcessIncomingMessage(ctx context.Context, in automation.Incoming) automation.Result
}

type Handler struct {
	Config           *config.Config
	AutomationEngine Processor
	Logger           zerolog.Logger
}

func NewHandler(cfg *config.Config, automationEngine Processor, logger zerolog.Logger) *Handler {
	return &Handler{
		Config:           cfg,
		AutomationEngine: automationEngine,
		Logger:           logger.With().Str("component", "webhook").Logger(),
	}
}

// Register mounts GET (verification) and POST (events) on one path.
func (h *Handler) Register(r gin.IRouter, path string) {
	r.GET(path, h.VerifyWebhook)
	r.POST(path, h.HandleMessage)
}

func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	// An unset verify token must never match an empty query parameter.
	if h.Config.VerifyToken != "" && mode == "subscribe" && token == h.Config.VerifyToken {
		h.Logger.Info().Msg("webhook verified successfully")
		c.String(http.StatusOK, challenge)
		return
	}

	h.Logger.Warn().Str("mode", mode).Msg("webhook verification failed")
	c.Status(http.StatusForbidden)
}

// HandleMessage always acknowledges with 200 EVENT_RECEIVED. The reply is
// dispatched before the acknowledgment is written.
func (h *Handler) HandleMessage(c *gin.Context) {
	h.process(c.Request)
	c.String(http.StatusOK, EventReceived)
}

func (h *Handler) process(r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.Logger.Warn().Err(err).Msg("failed to read webhook body")
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.Logger.Warn().Err(err).Msg("ignoring malformed webhook payload")
		return
	}

	in, ok := automation.ExtractIncoming(&payload)
	if !ok {
		h.Logger.Debug().Str("object", payload.Object).Msg("ignoring event without message")
		return
	}

	// Replies still go out if the provider drops the connection; the HTTP
	// client timeout bounds each call.
	ctx := context.WithoutCancel(r.Context())
	res := h.AutomationEngine.ProcessIncomingMessage(ctx, in)
	if err := res.Err(); err != nil {
		h.Logger.Error().Err(err).
			Str("from", in.From).
			Str("message_id", in.MessageID).
			Str("category", res.Category).
			Msg("outbound call failed")
	}
}
