package domain

import (
	"time"

	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

type State string

const (
	StatePending State = "PENDING"
	StateSent    State = "SENT"
	StateFailed  State = "FAILED"
)

// MaxAttempts counts the initial try plus sweep retries; the attempt
// that reaches it dead-letters the notification.
const MaxAttempts = 4

// SweepBatchSize bounds how many queued notifications one sweep takes.
const SweepBatchSize = 5

type QueuedNotification struct {
	ID           int64                `json:"id" gorm:"primaryKey"`
	DocumentKind fiscaldomain.DocKind `json:"document_kind" gorm:"type:text;not null;index:ix_notifications_document,priority:1"`
	DocumentID   int64                `json:"document_id" gorm:"not null;index:ix_notifications_document,priority:2"`
	Address      string               `json:"address" gorm:"type:text;not null"`
	Subject      string               `json:"subject" gorm:"type:text;not null"`
	Body         string               `json:"-" gorm:"type:text;not null"`
	State        State                `json:"state" gorm:"type:text;not null;index"`
	Attempts     int                  `json:"attempts" gorm:"not null;default:0"`
	LastError    *string              `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt    time.Time            `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time            `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (QueuedNotification) TableName() string { return "queued_notifications" }
