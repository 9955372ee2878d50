package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Document carries everything the layouts print, pre-formatted.
type Document struct {
	Title        string
	BusinessName string
	RUC          string
	Regime       string

	Number              string
	LegalNumber         string
	AccessKey           string
	AuthorizationNumber string
	IssuedAt            string

	CustomerName           string
	CustomerIdentification string

	Items []Item

	SubtotalUntaxed string
	SubtotalTaxed   string
	Discount        string
	TaxTotal        string
	Total           string

	PaymentMethod string
	Tendered      string
	Change        string
}

type Item struct {
	Description string
	Qty         string
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) RenderInvoice(ctx context.Context, doc Document) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, doc.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New(doc.BusinessName, props.Text{Style: fontstyle.Bold}),
			text.New("RUC: "+doc.RUC, props.Text{Top: 5}),
			text.New(doc.Regime, props.Text{Top: 9}),
		),
		col.New(6).Add(
			text.New("No. "+doc.LegalNumber, props.Text{Style: fontstyle.Bold}),
			text.New("Emitida: "+doc.IssuedAt, props.Text{Top: 5}),
			text.New("Autorizacion: "+doc.AuthorizationNumber, props.Text{Top: 9}),
		),
	)

	m.AddRow(12,
		col.New(12).Add(
			text.New("Clave de acceso", props.Text{Size: 8, Style: fontstyle.Bold}),
			text.New(doc.AccessKey, props.Text{Size: 8, Top: 4}),
		),
	)

	m.AddRow(15,
		col.New(12).Add(
			text.New("Cliente: "+doc.CustomerName, props.Text{Top: 0}),
			text.New("Identificacion: "+doc.CustomerIdentification, props.Text{Top: 4}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Descripcion", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Cant.", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "P. unit.", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Importe", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range doc.Items {
		m.AddRow(10,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Qty, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	totals := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal 0%", doc.SubtotalUntaxed, false},
		{"Subtotal gravado", doc.SubtotalTaxed, false},
		{"Descuento", doc.Discount, false},
		{"IVA", doc.TaxTotal, false},
		{"Total", doc.Total, true},
	}
	for _, row := range totals {
		style := fontstyle.Normal
		if row.bold {
			style = fontstyle.Bold
		}
		m.AddRow(8,
			col.New(8),
			text.NewCol(2, row.label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, row.value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out.GetBytes()), nil
}
