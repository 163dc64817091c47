package database

import (
	"context"

	"whatsapp-responder/internal/automation"
	"whatsapp-responder/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Store writes the audit trail. Write failures are logged and dropped so a
// broken database never affects replies.
type Store struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

func NewStore(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{
		DB:     db,
		Logger: log.With().Str("component", "store").Logger(),
	}
}

func (s *Store) RecordIncoming(ctx context.Context, in automation.Incoming) {
	s.create(ctx, &models.Message{
		WaID:    in.MessageID,
		Sender:  in.From,
		Content: in.Text,
		Type:    in.Type,
		Status:  models.StatusReceived,
	})
}

func (s *Store) RecordAutomation(ctx context.Context, in automation.Incoming, res automation.Result) {
	entry := &models.AutomationLog{
		Category:    res.Category,
		WaID:        in.From,
		MessageID:   in.MessageID,
		TriggerType: in.Type,
		ActionTaken: string(res.Action),
		Success:     res.ReplyErr == nil,
	}
	if err := res.Err(); err != nil {
		entry.ErrorMessage = err.Error()
	}
	s.create(ctx, entry)
}

// RecordOutgoing stores the recipient in Sender so a conversation groups by
// phone number.
func (s *Store) RecordOutgoing(ctx context.Context, to, messageID, content, msgType string, sendErr error) {
	msg := &models.Message{
		WaID:    messageID,
		Sender:  to,
		Content: content,
		Type:    msgType,
		Status:  models.StatusSent,
	}
	if msg.WaID == "" {
		msg.WaID = "outgoing-" + to
	}
	if sendErr != nil {
		msg.Status = models.StatusFailed
		msg.Error = sendErr.Error()
	}
	s.create(ctx, msg)
}

func (s *Store) create(ctx context.Context, value interface{}) {
	if err := s.DB.WithContext(ctx).Create(value).Error; err != nil {
		s.Logger.Warn().Err(err).Msgf("failed to store %T", value)
	}
}

// ListMessages returns the newest messages first, optionally for one sender.
func (s *Store) ListMessages(ctx context.Context, sender string, limit int) ([]models.Message, error) {
	query := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(clampLimit(limit))
	if sender != "" {
		query = query.Where("sender = ?", sender)
	}
	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListAutomationLogs returns the newest log entries first.
func (s *Store) ListAutomationLogs(ctx context.Context, limit int) ([]models.AutomationLog, error) {
	var logs []models.AutomationLog
	err := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(clampLimit(limit)).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
