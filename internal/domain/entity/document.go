package entity

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Tipos de columna configurables en la tabla de ítems.
const (
	ColumnKindText     = "text"
	ColumnKindDropdown = "dropdown"
)

// Amount es un decimal tolerante: al deserializar, cualquier valor no numérico
// (null, cadena vacía, texto libre) se coerce a 0 en lugar de fallar.
// Los totales siempre se calculan sobre el valor coercido.
type Amount struct {
	decimal.Decimal
}

// NewAmount construye un Amount desde un decimal.
func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

// AmountFromFloat construye un Amount desde un float64 (conveniencia para tests y seeds).
func AmountFromFloat(f float64) Amount { return Amount{Decimal: decimal.NewFromFloat(f)} }

// UnmarshalJSON acepta números, strings numéricos, null y basura; lo no numérico queda en 0.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	d, err := decimal.NewFromString(s)
	if err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

// MarshalJSON serializa como número JSON plano.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Decimal.IsZero() {
		return []byte("0"), nil
	}
	return []byte(a.Decimal.String()), nil
}

// Theme colores del documento.
type Theme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Text       string `json:"text"`
	HeaderText string `json:"headerText"`
}

// Logo imagen del encabezado (data-URL) más su encuadre.
type Logo struct {
	Src   string  `json:"src"`
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Column definición de una columna dinámica de la tabla de ítems.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"` // text | dropdown
}

// Visibility flags de secciones opcionales del documento.
type Visibility struct {
	Logo        bool `json:"logo"`
	BankDetails bool `json:"bankDetails"`
	Terms       bool `json:"terms"`
	Signature   bool `json:"signature"`
	Tax         bool `json:"tax"`
}

// Contact línea de contacto de la empresa (fragmento rich-text ya renderizado).
type Contact struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Company datos del emisor. Los campos de texto largo son fragmentos rich-text opacos.
type Company struct {
	Name     string    `json:"name"`
	Tagline  string    `json:"tagline"`
	Contacts []Contact `json:"contacts"`
	Address  string    `json:"address"`
	Bank     string    `json:"bank"`
	Terms    string    `json:"terms"`
}

// Client datos del receptor.
type Client struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Meta metadatos de la factura.
type Meta struct {
	Number string `json:"number"`
	Date   string `json:"date"` // YYYY-MM-DD, texto libre en el documento
	Title  string `json:"title"`
}

// LineItem una fila de la tabla. Los campos dinámicos viven en Fields,
// indexados por Column.ID; un campo ausente se trata como cadena vacía.
type LineItem struct {
	ID     string            `json:"id"`
	Qty    Amount            `json:"qty"`
	Price  Amount            `json:"price"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Field devuelve el valor del campo dinámico, o "" si no existe.
func (li LineItem) Field(columnID string) string {
	if li.Fields == nil {
		return ""
	}
	return li.Fields[columnID]
}

// ExtraCharge cargo adicional al pie de la factura (flete, embalaje, etc.).
type ExtraCharge struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Amount Amount `json:"amount"`
}

// Document es el estado completo de una factura en edición.
// Es dato puro: las reglas de totales viven en internal/domain/billing.
type Document struct {
	Theme        Theme         `json:"theme"`
	Logo         Logo          `json:"logo"`
	Signature    string        `json:"signature"` // data-URL o vacío
	PotOptions   []string      `json:"potOptions"`
	Columns      []Column      `json:"columns"`
	Visibility   Visibility    `json:"visibility"`
	Company      Company       `json:"company"`
	Client       Client        `json:"client"`
	Meta         Meta          `json:"meta"`
	Items        []LineItem    `json:"items"`
	ExtraCharges []ExtraCharge `json:"extraCharges"`
}

// Clone devuelve una copia profunda del documento (los snapshots del
// sincronizador no deben compartir slices con el documento vivo).
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.PotOptions = append([]string(nil), d.PotOptions...)
	c.Columns = append([]Column(nil), d.Columns...)
	c.Company.Contacts = append([]Contact(nil), d.Company.Contacts...)
	c.ExtraCharges = append([]ExtraCharge(nil), d.ExtraCharges...)
	c.Items = make([]LineItem, len(d.Items))
	for i, it := range d.Items {
		c.Items[i] = it
		if it.Fields != nil {
			f := make(map[string]string, len(it.Fields))
			for k, v := range it.Fields {
				f[k] = v
			}
			c.Items[i].Fields = f
		}
	}
	return &c
}

// interface guard: Amount debe participar en (de)serialización JSON del blob.
var (
	_ json.Marshaler   = Amount{}
	_ json.Unmarshaler = (*Amount)(nil)
)
