package domain

import (
	"context"

	"gorm.io/gorm"

	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *QueuedNotification) error
	Save(ctx context.Context, db *gorm.DB, n *QueuedNotification) error
	// FindPendingByDocument returns the open entry for a document, if any.
	FindPendingByDocument(ctx context.Context, db *gorm.DB, kind fiscaldomain.DocKind, documentID int64) (*QueuedNotification, error)
	// ListSweepable returns PENDING entries below the attempt ceiling,
	// oldest first.
	ListSweepable(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]QueuedNotification, error)
	List(ctx context.Context, db *gorm.DB, state State) ([]QueuedNotification, error)
}
