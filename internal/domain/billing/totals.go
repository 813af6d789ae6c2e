// Package billing contiene el cálculo puro de totales de una factura.
//
//	subtotal = Σ (qty × price)            (faltante o no numérico ⇒ 0)
//	tax      = visibility.tax ? 5% : 0    (sobre el subtotal, exacto, sin redondeo)
//	extra    = Σ cargos adicionales       (montos no numéricos ⇒ 0)
//	total    = subtotal + tax + extra
//
// Sin política de redondeo ni multi-moneda: los montos se mantienen exactos
// con decimal y el formato queda en la capa de presentación.
package billing

import (
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TaxRate tasa plana aplicada cuando la sección de impuestos está visible.
var TaxRate = decimal.NewFromFloat(0.05)

// Totals desglose calculado de un documento.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Extra    decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal suma qty×price de cada ítem. Amount ya coerce lo no numérico a 0,
// así que una fila a medio llenar simplemente no aporta.
func Subtotal(items []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Qty.Decimal.Mul(it.Price.Decimal))
	}
	return sum
}

// Tax devuelve 0 si el impuesto no está visible; si no, subtotal × TaxRate.
func Tax(subtotal decimal.Decimal, taxVisible bool) decimal.Decimal {
	if !taxVisible {
		return decimal.Zero
	}
	return subtotal.Mul(TaxRate)
}

// ExtraTotal suma los cargos adicionales.
func ExtraTotal(charges []entity.ExtraCharge) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range charges {
		sum = sum.Add(c.Amount.Decimal)
	}
	return sum
}

// Compute calcula el desglose completo de un documento.
func Compute(doc *entity.Document) Totals {
	sub := Subtotal(doc.Items)
	tax := Tax(sub, doc.Visibility.Tax)
	extra := ExtraTotal(doc.ExtraCharges)
	return Totals{
		Subtotal: sub,
		Tax:      tax,
		Extra:    extra,
		Total:    sub.Add(tax).Add(extra),
	}
}
