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

func (p *PDFProvider) RenderReceipt(ctx context.Context, doc Document) (io.Reader, error) {
	cfg := config.NewBuilder().Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		col.New(12).Add(
			text.New(doc.BusinessName, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center}),
			text.New("Nota de venta "+doc.Number, props.Text{Size: 9, Top: 6, Align: align.Center}),
			text.New(doc.IssuedAt, props.Text{Size: 8, Top: 10, Align: align.Center}),
		),
	)

	m.AddRow(8,
		text.NewCol(7, "Descripcion", props.Text{Style: fontstyle.Bold, Size: 8}),
		text.NewCol(2, "Cant.", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(3, "Importe", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
	)

	for _, item := range doc.Items {
		m.AddRow(8,
			text.NewCol(7, item.Description, props.Text{Size: 8}),
			text.NewCol(2, item.Qty, props.Text{Size: 8, Align: align.Right}),
			text.NewCol(3, item.Amount, props.Text{Size: 8, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(3, doc.Total, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Recibido", props.Text{Size: 8}),
		text.NewCol(3, doc.Tendered, props.Text{Size: 8, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Cambio", props.Text{Size: 8}),
		text.NewCol(3, doc.Change, props.Text{Size: 8, Align: align.Right}),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out.GetBytes()), nil
}
