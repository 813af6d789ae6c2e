// Package pdf implementa la representación imprimible A4 de una factura
// guardada: la contraparte backend del botón "Print PDF" del builder.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + tagline      │  Título + N° + Fecha      │
//	│  CLIENTE: Nombre + dirección                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | columnas dinámicas... | Precio | Importe     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto 5% / Cargos extra / TOTAL     │
//	│  FOOTER: Datos bancarios | Términos | Línea de firma        │
//	└─────────────────────────────────────────────────────────────┘
//
// Las secciones opcionales respetan los flags de visibilidad del documento y
// los colores salen del tema guardado.
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	apphistory "github.com/jhoicas/Facturador-api/internal/application/history"
	"github.com/jhoicas/Facturador-api/internal/domain/billing"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

var _ apphistory.InvoicePDFGenerator = (*MarotoInvoiceRenderer)(nil)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// MarotoInvoiceRenderer implementa history.InvoicePDFGenerator usando Maroto v2.
type MarotoInvoiceRenderer struct{}

// NewMarotoInvoiceRenderer construye el renderer.
func NewMarotoInvoiceRenderer() *MarotoInvoiceRenderer { return &MarotoInvoiceRenderer{} }

// RenderInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoInvoiceRenderer) RenderInvoicePDF(
	_ context.Context,
	record *entity.HistoryRecord,
	doc *entity.Document,
	totals billing.Totals,
) ([]byte, error) {
	primary := parseHexColor(doc.Theme.Primary)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+record.InvoiceNo, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, primary))
	m.AddRows(line.NewRow(1, props.Line{Color: primary, Thickness: 0.5}))
	m.AddRows(clientRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: primary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(doc.Columns, primary))
	for _, r := range tableItemRows(doc) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: primary, Thickness: 0.3}))
	for _, r := range totalsRows(doc, totals, primary) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	for _, r := range footerRows(doc, primary) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// headerRow: empresa + tagline (izq) y título + número + fecha (der).
func headerRow(doc *entity.Document, primary *props.Color) core.Row {
	title := doc.Meta.Title
	if title == "" {
		title = "INVOICE"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.Company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: primary, Top: 1,
			}),
			text.New(doc.Company.Tagline, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: primary, Top: 1,
			}),
			text.New(doc.Meta.Number, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 9,
			}),
			text.New(doc.Meta.Date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del receptor.
func clientRow(doc *entity.Document) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 1,
			}),
			text.New(doc.Client.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 5,
			}),
			text.New(doc.Client.Address, props.Text{
				Size: 8, Top: 10, Color: colorGray,
			}),
		),
	)
}

// columnWidths reparte la grilla de 12: 1 para cantidad, 2 para precio,
// 2 para importe y el resto entre las columnas dinámicas del esquema.
func columnWidths(columns []entity.Column) []int {
	const free = 12 - 1 - 2 - 2
	n := len(columns)
	if n == 0 {
		return nil
	}
	widths := make([]int, n)
	base := free / n
	rest := free % n
	for i := range widths {
		widths[i] = base
		if i < rest {
			widths[i]++
		}
	}
	return widths
}

// tableHeaderRow: cabecera con las columnas dinámicas del esquema.
func tableHeaderRow(columns []entity.Column, primary *props.Color) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: primary, Top: 2, Left: 1, Right: 1,
		}))
	}
	cols := []core.Col{h("Qty", 1, align.Center)}
	for i, w := range columnWidths(columns) {
		cols = append(cols, h(columns[i].Label, w, align.Left))
	}
	cols = append(cols,
		h("Price", 2, align.Right),
		h("Amount", 2, align.Right),
	)
	return row.New(8).Add(cols...)
}

// tableItemRows: una fila por ítem; los campos dinámicos salen del esquema.
func tableItemRows(doc *entity.Document) []core.Row {
	widths := columnWidths(doc.Columns)
	result := make([]core.Row, 0, len(doc.Items))
	for _, it := range doc.Items {
		amount := it.Qty.Decimal.Mul(it.Price.Decimal)
		cols := []core.Col{
			col.New(1).Add(text.New(
				it.Qty.Decimal.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
		}
		for i, w := range widths {
			cols = append(cols, col.New(w).Add(text.New(
				it.Field(doc.Columns[i].ID),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)))
		}
		cols = append(cols,
			col.New(2).Add(text.New(
				it.Price.Decimal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				amount.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		)
		result = append(result, row.New(7).Add(cols...))
	}
	return result
}

// totalsRows: bloque de totales alineado a la derecha, con el impuesto y los
// cargos extra solo cuando aplican.
func totalsRows(doc *entity.Document, totals billing.Totals, primary *props.Color) []core.Row {
	pair := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
			})),
			col.New(3).Add(text.New(value, props.Text{
				Size: 9, Align: align.Right, Right: 1,
			})),
		)
	}

	rows := []core.Row{pair("Subtotal:", totals.Subtotal.StringFixed(2))}
	if doc.Visibility.Tax {
		rows = append(rows, pair("Tax (5%):", totals.Tax.StringFixed(2)))
	}
	for _, c := range doc.ExtraCharges {
		rows = append(rows, pair(c.Label+":", c.Amount.Decimal.StringFixed(2)))
	}
	rows = append(rows, row.New(9).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: primary, Right: 2, Top: 1,
		})),
		col.New(3).Add(text.New(totals.Total.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: primary, Right: 1, Top: 1,
		})),
	))
	return rows
}

// footerRows: datos bancarios, términos y línea de firma según visibilidad.
// Los fragmentos rich-text se imprimen como texto plano.
func footerRows(doc *entity.Document, primary *props.Color) []core.Row {
	var rows []core.Row
	if doc.Visibility.BankDetails && doc.Company.Bank != "" {
		rows = append(rows,
			row.New(5).Add(col.New(12).Add(text.New("BANK DETAILS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: primary, Top: 1,
			}))),
			row.New(8).Add(col.New(12).Add(text.New(stripTags(doc.Company.Bank), props.Text{
				Size: 8, Color: colorGray, Top: 1,
			}))),
		)
	}
	if doc.Visibility.Terms && doc.Company.Terms != "" {
		rows = append(rows,
			row.New(5).Add(col.New(12).Add(text.New("TERMS & CONDITIONS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: primary, Top: 1,
			}))),
			row.New(8).Add(col.New(12).Add(text.New(stripTags(doc.Company.Terms), props.Text{
				Size: 8, Color: colorGray, Top: 1,
			}))),
		)
	}
	if doc.Visibility.Signature {
		rows = append(rows,
			row.New(12),
			row.New(1).Add(
				col.New(8),
				col.New(4).Add(line.New(props.Line{Thickness: 0.4})),
			),
			row.New(8).Add(
				col.New(8),
				col.New(4).Add(
					text.New(stripTags(doc.Company.Name), props.Text{
						Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1,
					}),
					text.New("Authorized Signatory", props.Text{
						Size: 7, Align: align.Center, Color: colorGray, Top: 6,
					}),
				),
			),
		)
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// parseHexColor convierte "#rrggbb" del tema a color Maroto; si el valor es
// inválido cae a un verde neutro (el primario por defecto del builder).
func parseHexColor(hex string) *props.Color {
	if len(hex) != 7 || hex[0] != '#' {
		return &props.Color{Red: 21, Green: 128, Blue: 61}
	}
	r, err1 := strconv.ParseUint(hex[1:3], 16, 8)
	g, err2 := strconv.ParseUint(hex[3:5], 16, 8)
	b, err3 := strconv.ParseUint(hex[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return &props.Color{Red: 21, Green: 128, Blue: 61}
	}
	return &props.Color{Red: int(r), Green: int(g), Blue: int(b)}
}

// stripTags quita las etiquetas HTML de un fragmento rich-text para la línea
// de firma y los bloques de texto del pie.
func stripTags(s string) string {
	out := make([]rune, 0, len(s))
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			out = append(out, r)
		}
	}
	return string(out)
}
