package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord es un snapshot inmutable de una factura guardada.
// Los campos resumen están desnormalizados para el listado; FullState es el
// blob opaco con el Document completo para recarga exacta.
// Inmutable para usuarios normales (solo borrado); un admin puede
// sobrescribir el contenido por la ruta de edición delegada.
type HistoryRecord struct {
	ID          string
	AccountID   string
	InvoiceNo   string
	ClientName  string
	Date        string
	TotalAmount decimal.Decimal
	SearchKey   string
	FullState   []byte // Document serializado, opaco para la capa de persistencia
	CreatedAt   time.Time
}

// BuildSearchKey normaliza cliente + número de factura para filtrado
// por subcadena sin distinguir mayúsculas.
func BuildSearchKey(clientName, invoiceNo string) string {
	return strings.ToLower(strings.TrimSpace(clientName + " " + invoiceNo))
}

// Matches aplica el filtro de texto libre del listado: subcadena
// case-insensitive contra nombre de cliente o número de factura.
// Un término vacío acepta todo.
func (r *HistoryRecord) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ClientName), term) ||
		strings.Contains(strings.ToLower(r.InvoiceNo), term)
}

// Draft es la única copia de trabajo mutable por cuenta. Se sobrescribe
// completa en cada tick de autoguardado (last-write-wins, sin versión).
type Draft struct {
	AccountID string
	Document  []byte // Document serializado
	UpdatedAt time.Time
}
