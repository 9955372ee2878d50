package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// IdentificationKind is the tax identification type of a customer.
type IdentificationKind string

const (
	IdentificationRUC      IdentificationKind = "RUC"
	IdentificationCedula   IdentificationKind = "CEDULA"
	IdentificationPassport IdentificationKind = "PASAPORTE"
	// IdentificationConsumer marks the anonymous final-consumer record.
	IdentificationConsumer IdentificationKind = "CONSUMIDOR"
)

type Customer struct {
	ID                 snowflake.ID       `gorm:"primaryKey" json:"id,string"`
	Name               string             `gorm:"not null" json:"name"`
	IdentificationKind IdentificationKind `gorm:"not null;default:'CONSUMIDOR'" json:"identification_kind"`
	Identification     *string            `gorm:"index" json:"identification,omitempty"`
	Email              *string            `json:"email,omitempty"`
	Phone              *string            `json:"phone,omitempty"`
	Address            *string            `json:"address,omitempty"`
	PriceListID        *snowflake.ID      `gorm:"index" json:"price_list_id,omitempty"`
	CreatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// Taxable reports whether the customer can be named on an authorized
// document. The anonymous final consumer never is.
func (c Customer) Taxable() bool {
	if c.IdentificationKind == IdentificationConsumer {
		return false
	}
	return c.Identification != nil && *c.Identification != ""
}
