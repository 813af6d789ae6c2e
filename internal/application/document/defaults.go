// Package document define los valores por defecto del Document y la única
// frontera de (de)serialización del blob. El resto del código nunca
// reinterpreta tipos ambiguos: lo que sale de aquí es siempre un Document
// completo y tipado.
package document

import "github.com/jhoicas/Facturador-api/internal/domain/entity"

// Defaults devuelve un documento nuevo con los valores iniciales del builder.
func Defaults() *entity.Document {
	return &entity.Document{
		Theme: entity.Theme{
			Primary:    "#15803d",
			Secondary:  "#f0fdf4",
			Text:       "#1f2937",
			HeaderText: "#111827",
		},
		Logo:       entity.Logo{Scale: 1},
		PotOptions: []string{`4" Pot`, `6" Pot`, `8" Pot`},
		Columns: []entity.Column{
			{ID: "description", Label: "Plant Description", Kind: entity.ColumnKindText},
			{ID: "size", Label: "Size/Pot", Kind: entity.ColumnKindDropdown},
		},
		Visibility: entity.Visibility{
			Logo:        true,
			BankDetails: true,
			Terms:       true,
			Signature:   true,
			Tax:         true,
		},
		Company: entity.Company{
			Name:     "Green Thumb Nursery",
			Contacts: []entity.Contact{},
		},
		Meta: entity.Meta{
			Number: "INV-001",
			Title:  "INVOICE",
		},
		Items: []entity.LineItem{
			{ID: "1", Qty: entity.AmountFromFloat(1)},
		},
		ExtraCharges: []entity.ExtraCharge{},
	}
}
