package models

import (
	"time"
)

const (
	StatusReceived = "received"
	StatusSent     = "sent"
	StatusFailed   = "failed"
)

// Message represents an inbound or outgoing WhatsApp message
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WaID      string    `gorm:"index;not null" json:"wa_id"`
	Sender    string    `gorm:"index;not null" json:"sender"`
	Content   string    `gorm:"type:text" json:"content"`
	Type      string    `gorm:"type:varchar(50)" json:"type"`
	Status    string    `gorm:"type:varchar(20)" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

// AutomationLog is one classification and dispatch of an inbound message
type AutomationLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Category     string    `gorm:"type:varchar(100)" json:"category"` // empty when the fallback fired
	WaID         string    `gorm:"type:varchar(50);index" json:"wa_id"`
	MessageID    string    `gorm:"type:varchar(255)" json:"message_id"`
	TriggerType  string    `gorm:"type:varchar(50)" json:"trigger_type"`
	ActionTaken  string    `gorm:"type:varchar(50)" json:"action_taken"`
	Success      bool      `json:"success"`
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AutomationLog) TableName() string {
	return "automation_logs"
}
