package service

import (
	"context"
	"encoding/json"
	"time"

	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	"github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	"gorm.io/gorm"
)

// record is the slice of a sale or credit note the emission flow needs.
type record interface {
	ID() int64
	Kind() domain.DocKind
	TypeCode() string
	State() domain.State
	SetState(st domain.State)
	AccessKey() *string
	SetAccessKey(key string)
	LegalNumber() *string
	SetLegalNumber(number string)
	SignedPayload() *string
	SetSignedPayload(payload string)
	SetAuthorization(number string)
	SetMessage(message string)
	CustomerID() *int64
	IssuedAt() time.Time
	Payload(settings *domain.FiscalSettings) ([]byte, error)
	Save(ctx context.Context, db *gorm.DB) error
}

type saleRecord struct {
	sale *saledomain.Sale
	repo saledomain.Repository
}

func (r *saleRecord) ID() int64                   { return r.sale.ID }
func (r *saleRecord) Kind() domain.DocKind        { return domain.DocInvoice }
func (r *saleRecord) TypeCode() string            { return domain.TypeCodeInvoice }
func (r *saleRecord) State() domain.State         { return r.sale.FiscalState }
func (r *saleRecord) SetState(st domain.State)    { r.sale.FiscalState = st }
func (r *saleRecord) AccessKey() *string          { return r.sale.AccessKey }
func (r *saleRecord) SetAccessKey(key string)     { r.sale.AccessKey = &key }
func (r *saleRecord) LegalNumber() *string        { return r.sale.LegalNumber }
func (r *saleRecord) SetLegalNumber(n string)     { r.sale.LegalNumber = &n }
func (r *saleRecord) SignedPayload() *string      { return r.sale.SignedPayload }
func (r *saleRecord) SetSignedPayload(p string)   { r.sale.SignedPayload = &p }
func (r *saleRecord) SetAuthorization(n string)   { r.sale.AuthorizationNumber = &n }
func (r *saleRecord) SetMessage(m string)         { r.sale.FiscalMessage = &m }
func (r *saleRecord) CustomerID() *int64          { return r.sale.CustomerID }
func (r *saleRecord) IssuedAt() time.Time         { return r.sale.IssuedAt }

func (r *saleRecord) Payload(settings *domain.FiscalSettings) ([]byte, error) {
	type line struct {
		Code      string `json:"code"`
		Name      string `json:"name"`
		Quantity  string `json:"quantity"`
		UnitPrice string `json:"unit_price"`
		Discount  string `json:"discount"`
		TaxRate   string `json:"tax_rate"`
		Subtotal  string `json:"subtotal"`
		Tax       string `json:"tax"`
	}
	lines := make([]line, 0, len(r.sale.Lines))
	for _, l := range r.sale.Lines {
		lines = append(lines, line{
			Code:      l.ProductCode,
			Name:      l.ProductName,
			Quantity:  l.Quantity.String(),
			UnitPrice: l.UnitPrice.String(),
			Discount:  l.Discount.String(),
			TaxRate:   l.TaxRate.String(),
			Subtotal:  l.Subtotal.String(),
			Tax:       l.TaxAmount.String(),
		})
	}
	return json.Marshal(map[string]any{
		"document_type":   domain.TypeCodeInvoice,
		"legal_number":    deref(r.sale.LegalNumber),
		"issued_at":       r.sale.IssuedAt.Format("2006-01-02"),
		"ruc":             settings.RUC,
		"business_name":   settings.BusinessName,
		"regime":          settings.Regime,
		"customer_id":     derefInt(r.sale.CustomerID),
		"subtotal_untaxed": r.sale.SubtotalUntaxed.String(),
		"subtotal_taxed":   r.sale.SubtotalTaxed.String(),
		"discount":         r.sale.Discount.String(),
		"tax_total":        r.sale.TaxTotal.String(),
		"total":            r.sale.Total.String(),
		"lines":            lines,
	})
}

func (r *saleRecord) Save(ctx context.Context, db *gorm.DB) error {
	r.sale.UpdatedAt = time.Now().UTC()
	return r.repo.Save(ctx, db, r.sale)
}

type creditNoteRecord struct {
	note *creditnotedomain.CreditNote
	repo creditnotedomain.Repository
}

func (r *creditNoteRecord) ID() int64                 { return r.note.ID }
func (r *creditNoteRecord) Kind() domain.DocKind      { return domain.DocCreditNote }
func (r *creditNoteRecord) TypeCode() string          { return domain.TypeCodeCreditNote }
func (r *creditNoteRecord) State() domain.State       { return r.note.FiscalState }
func (r *creditNoteRecord) SetState(st domain.State)  { r.note.FiscalState = st }
func (r *creditNoteRecord) AccessKey() *string        { return r.note.AccessKey }
func (r *creditNoteRecord) SetAccessKey(key string)   { r.note.AccessKey = &key }
func (r *creditNoteRecord) LegalNumber() *string      { return r.note.LegalNumber }
func (r *creditNoteRecord) SetLegalNumber(n string)   { r.note.LegalNumber = &n }
func (r *creditNoteRecord) SignedPayload() *string    { return r.note.SignedPayload }
func (r *creditNoteRecord) SetSignedPayload(p string) { r.note.SignedPayload = &p }
func (r *creditNoteRecord) SetAuthorization(n string) { r.note.AuthorizationNumber = &n }
func (r *creditNoteRecord) SetMessage(m string)       { r.note.FiscalMessage = &m }
func (r *creditNoteRecord) CustomerID() *int64        { return &r.note.CustomerID }
func (r *creditNoteRecord) IssuedAt() time.Time       { return r.note.IssuedAt }

func (r *creditNoteRecord) Payload(settings *domain.FiscalSettings) ([]byte, error) {
	type line struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Subtotal string `json:"subtotal"`
		TaxRate  string `json:"tax_rate"`
		Tax      string `json:"tax"`
	}
	lines := make([]line, 0, len(r.note.Lines))
	for _, l := range r.note.Lines {
		lines = append(lines, line{
			Code:     l.ProductCode,
			Name:     l.ProductName,
			Quantity: l.Quantity.String(),
			Subtotal: l.Subtotal.String(),
			TaxRate:  l.TaxRate.String(),
			Tax:      l.TaxAmount.String(),
		})
	}
	return json.Marshal(map[string]any{
		"document_type":    domain.TypeCodeCreditNote,
		"legal_number":     deref(r.note.LegalNumber),
		"issued_at":        r.note.IssuedAt.Format("2006-01-02"),
		"ruc":              settings.RUC,
		"business_name":    settings.BusinessName,
		"reason":           r.note.Reason,
		"customer_id":      r.note.CustomerID,
		"subtotal_untaxed": r.note.SubtotalUntaxed.String(),
		"subtotal_taxed":   r.note.SubtotalTaxed.String(),
		"tax_total":        r.note.TaxTotal.String(),
		"total":            r.note.Total.String(),
		"lines":            lines,
	})
}

func (r *creditNoteRecord) Save(ctx context.Context, db *gorm.DB) error {
	r.note.UpdatedAt = time.Now().UTC()
	return r.repo.Save(ctx, db, r.note)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
