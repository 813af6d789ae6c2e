package history

import (
	"context"

	"github.com/jhoicas/Facturador-api/internal/domain/billing"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// InvoicePDFGenerator puerto de render: lo implementa infrastructure/pdf.
type InvoicePDFGenerator interface {
	RenderInvoicePDF(ctx context.Context, record *entity.HistoryRecord, doc *entity.Document, totals billing.Totals) ([]byte, error)
}
