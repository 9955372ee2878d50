package domain

import (
	"time"
)

type DocKind string

const (
	DocInvoice    DocKind = "INVOICE"
	DocCreditNote DocKind = "CREDIT_NOTE"
)

// SRI document type codes used inside access keys.
const (
	TypeCodeInvoice    = "01"
	TypeCodeCreditNote = "04"
)

type Environment string

const (
	EnvTest       Environment = "test"
	EnvProduction Environment = "production"
)

// Code returns the single-digit environment code used in access keys.
func (e Environment) Code() string {
	if e == EnvProduction {
		return "2"
	}
	return "1"
}

// FiscalSettings is a single persisted row. Confirmed is cleared every
// time the environment changes and must be re-acknowledged before any
// emission.
type FiscalSettings struct {
	ID                int64       `json:"-" gorm:"primaryKey"`
	Environment       Environment `json:"environment" gorm:"type:text;not null;default:'test'"`
	Confirmed         bool        `json:"confirmed" gorm:"not null;default:false"`
	EstablishmentCode string      `json:"establishment_code" gorm:"type:text;not null;default:'001'"`
	EmissionPoint     string      `json:"emission_point" gorm:"type:text;not null;default:'001'"`
	RUC               string      `json:"ruc" gorm:"type:text;not null;default:''"`
	BusinessName      string      `json:"business_name" gorm:"type:text;not null;default:''"`
	Regime            string      `json:"regime" gorm:"type:text;not null;default:''"`
	UpdatedAt         time.Time   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FiscalSettings) TableName() string { return "fiscal_settings" }

// Certificate is the single signing certificate. Emission requires it.
type Certificate struct {
	ID       int64     `json:"-" gorm:"primaryKey"`
	Blob     []byte    `json:"-" gorm:"not null"`
	Password string    `json:"-" gorm:"type:text;not null"`
	LoadedAt time.Time `json:"loaded_at" gorm:"not null"`
}

func (Certificate) TableName() string { return "certificates" }

// FiscalSequence holds the next sequential per document kind and
// environment. Sequentials are assigned on first emission only and
// never reused.
type FiscalSequence struct {
	ID          int64       `gorm:"primaryKey"`
	DocKind     DocKind     `gorm:"type:text;not null;uniqueIndex:ux_fiscal_sequences_kind_env,priority:1"`
	Environment Environment `gorm:"type:text;not null;uniqueIndex:ux_fiscal_sequences_kind_env,priority:2"`
	Next        int64       `gorm:"not null;default:0"`
}

func (FiscalSequence) TableName() string { return "fiscal_sequences" }
