package pdf

import (
	"context"
	"io"
)

type Provider interface {
	// RenderInvoice produces the full-page fiscal document layout.
	RenderInvoice(ctx context.Context, doc Document) (io.Reader, error)
	// RenderReceipt produces the compact point-of-sale ticket layout.
	RenderReceipt(ctx context.Context, doc Document) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) RenderInvoice(ctx context.Context, doc Document) (io.Reader, error) {
	return nil, nil
}

func (p *NoOpProvider) RenderReceipt(ctx context.Context, doc Document) (io.Reader, error) {
	return nil, nil
}
