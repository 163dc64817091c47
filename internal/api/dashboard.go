package api

import (
	"context"
	"net/http"
	"strconv"

	"whatsapp-responder/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditReader is the read side of the audit store.
type AuditReader interface {
	ListMessages(ctx context.Context, sender string, limit int) ([]models.Message, error)
	ListAutomationLogs(ctx context.Context, limit int) ([]models.AutomationLog, error)
}

type DashboardHandler struct {
	Store  AuditReader
	Logger zerolog.Logger
}

func NewDashboardHandler(store AuditReader, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{Store: store, Logger: logger}
}

func (h *DashboardHandler) Register(r gin.IRouter) {
	r.GET("/messages", h.GetMessages)
	r.GET("/automation/logs", h.GetLogs)
}

func (h *DashboardHandler) GetMessages(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	messages, err := h.Store.ListMessages(c.Request.Context(), c.Query("sender"), limit)
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

func (h *DashboardHandler) GetLogs(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	logs, err := h.Store.ListAutomationLogs(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to list automation logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list automation logs"})
		return
	}
	if logs == nil {
		logs = []models.AutomationLog{}
	}
	c.JSON(http.StatusOK, logs)
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}
