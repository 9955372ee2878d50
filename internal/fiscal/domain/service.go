package domain

import (
	"context"
	"errors"
)

type EmitResult struct {
	Success             bool    `json:"success"`
	State               State   `json:"state"`
	AuthorizationNumber *string `json:"authorization_number,omitempty"`
	AccessKey           *string `json:"access_key,omitempty"`
	LegalNumber         *string `json:"legal_number,omitempty"`
	Message             string  `json:"message,omitempty"`
}

type StatusResponse struct {
	Environment       Environment `json:"environment"`
	Confirmed         bool        `json:"confirmed"`
	CertificateLoaded bool        `json:"certificate_loaded"`
	QuotaAllowed      bool        `json:"quota_allowed"`
	QuotaReason       string      `json:"quota_reason,omitempty"`
}

type UpdateSettingsRequest struct {
	EstablishmentCode *string `json:"establishment_code"`
	EmissionPoint     *string `json:"emission_point"`
	RUC               *string `json:"ruc"`
	BusinessName      *string `json:"business_name"`
	Regime            *string `json:"regime"`
}

type UploadCertificateRequest struct {
	Blob     []byte `json:"blob"`
	Password string `json:"password"`
}

type Service interface {
	// EmitInvoice drives a sale through reception and authorization.
	// AUTHORIZED is terminal; a PENDING document with a stored signed
	// payload is queried first and only resent when no verdict exists.
	EmitInvoice(ctx context.Context, saleID string) (EmitResult, error)
	EmitCreditNote(ctx context.Context, noteID string) (EmitResult, error)

	Status(ctx context.Context) (StatusResponse, error)
	// SetEnvironment changes the target environment and clears the
	// confirmation gate whenever the value actually changes.
	SetEnvironment(ctx context.Context, env Environment) (FiscalSettings, error)
	ConfirmEnvironment(ctx context.Context) (FiscalSettings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (FiscalSettings, error)
	UploadCertificate(ctx context.Context, req UploadCertificateRequest) error
	Settings(ctx context.Context) (FiscalSettings, error)
}

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrNotFound               = errors.New("not_found")
	ErrReceiptNotFiscal       = errors.New("receipt_not_fiscal")
	ErrVoidedSale             = errors.New("sale_voided")
	ErrNoCertificate          = errors.New("certificate_not_loaded")
	ErrCustomerNotTaxable     = errors.New("customer_not_taxable")
	ErrEnvironmentUnconfirmed = errors.New("environment_not_confirmed")
	ErrSettingsIncomplete     = errors.New("fiscal_settings_incomplete")
	ErrQuotaDenied            = errors.New("quota_denied")
	ErrInvalidEnvironment     = errors.New("invalid_environment")
	ErrInvalidCertificate     = errors.New("invalid_certificate")
)
