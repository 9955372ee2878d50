// Package domain contains the subscription cache and quota decision types.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

type PlanKind string

const (
	PlanTrial           PlanKind = "TRIAL"
	PlanTimeBound       PlanKind = "TIME_BOUND"
	PlanDocumentPackage PlanKind = "DOCUMENT_PACKAGE"
	PlanLifetime        PlanKind = "LIFETIME"
)

// SubscriptionState is the single-row cache of the entitlement server's
// verdict plus the local free-invoice counter.
type SubscriptionState struct {
	ID               int64      `json:"-" gorm:"primaryKey"`
	Authorized       bool       `json:"authorized" gorm:"not null;default:false"`
	Plan             PlanKind   `json:"plan" gorm:"type:text;not null;default:'TRIAL'"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingDocs    *int64     `json:"remaining_docs,omitempty"`
	FreeInvoicesUsed int64      `json:"free_invoices_used" gorm:"not null;default:0"`
	LastValidatedAt  *time.Time `json:"last_validated_at,omitempty"`
	Message          *string    `json:"message,omitempty" gorm:"type:text"`
	// LastResponse keeps the entitlement server's raw answer alongside
	// the decoded fields.
	LastResponse datatypes.JSON `json:"-"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SubscriptionState) TableName() string { return "subscription_states" }
