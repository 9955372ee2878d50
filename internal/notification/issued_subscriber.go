package notification

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	"github.com/tecnomade/clouget-pos/internal/events"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	"github.com/tecnomade/clouget-pos/internal/notification/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubscriberParams struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Bus          *events.Bus
	Service      domain.Service
	SaleRepo     saledomain.Repository
	NoteRepo     creditnotedomain.Repository
	CustomerRepo customerdomain.Repository
}

// RegisterIssuedSubscriber mails the customer whenever a document is
// authorized. Customers without an email address are skipped.
func RegisterIssuedSubscriber(p SubscriberParams) {
	log := p.Log.Named("notification.subscriber")

	p.Bus.Subscribe(events.TopicDocumentIssued, func(ev any) {
		issued, ok := ev.(events.DocumentIssued)
		if !ok {
			return
		}
		ctx := context.Background()

		id, err := snowflake.ParseString(issued.DocumentID)
		if err != nil {
			log.Warn("bad document id in issued event", zap.String("document_id", issued.DocumentID))
			return
		}

		kind := fiscaldomain.DocKind(issued.DocumentKind)
		customerID, err := documentCustomer(ctx, p, kind, id.Int64())
		if err != nil {
			log.Warn("issued document lookup failed", zap.String("document_id", issued.DocumentID), zap.Error(err))
			return
		}
		if customerID == 0 {
			return
		}

		customer, err := p.CustomerRepo.FindByID(ctx, p.DB, snowflake.ID(customerID))
		if err != nil || customer == nil || customer.Email == nil {
			return
		}

		title := "factura"
		if kind == fiscaldomain.DocCreditNote {
			title = "nota de credito"
		}
		_, err = p.Service.SendOrQueue(ctx, domain.SendRequest{
			DocumentKind: kind,
			DocumentID:   id.Int64(),
			Address:      *customer.Email,
			Subject:      fmt.Sprintf("Su %s %s", title, issued.LegalNumber),
			Body: fmt.Sprintf(
				"<p>Estimado/a %s,</p><p>Su %s <strong>%s</strong> fue autorizada.</p>",
				customer.Name, title, issued.LegalNumber),
		})
		if err != nil {
			log.Warn("notification dispatch failed", zap.String("document_id", issued.DocumentID), zap.Error(err))
		}
	})
}

func documentCustomer(ctx context.Context, p SubscriberParams, kind fiscaldomain.DocKind, id int64) (int64, error) {
	switch kind {
	case fiscaldomain.DocInvoice:
		sale, err := p.SaleRepo.FindByID(ctx, p.DB, id)
		if err != nil || sale == nil {
			return 0, err
		}
		if sale.CustomerID == nil {
			return 0, nil
		}
		return *sale.CustomerID, nil
	case fiscaldomain.DocCreditNote:
		note, err := p.NoteRepo.FindByID(ctx, p.DB, id)
		if err != nil || note == nil {
			return 0, err
		}
		return note.CustomerID, nil
	}
	return 0, nil
}
