package document

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// Encode serializa el documento al blob que guarda el Persistence Gateway.
func Encode(doc *entity.Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document: serializar: %w", err)
	}
	return b, nil
}

// Decode deserializa un blob con recuperación local: un blob ilegible produce
// el documento por defecto completo; un campo de primer nivel malformado o
// ausente se sustituye por su valor por defecto. Nunca devuelve error de
// parseo hacia arriba: la vista no debe caerse por datos guardados corruptos.
func Decode(blob []byte) *entity.Document {
	doc := Defaults()
	if len(blob) == 0 {
		return doc
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(blob, &fields); err != nil {
		return doc
	}

	decodeField(fields, "theme", &doc.Theme)
	decodeField(fields, "logo", &doc.Logo)
	decodeField(fields, "signature", &doc.Signature)
	decodeField(fields, "potOptions", &doc.PotOptions)
	decodeField(fields, "columns", &doc.Columns)
	decodeField(fields, "visibility", &doc.Visibility)
	decodeField(fields, "company", &doc.Company)
	decodeField(fields, "client", &doc.Client)
	decodeField(fields, "meta", &doc.Meta)
	decodeField(fields, "items", &doc.Items)
	decodeField(fields, "extraCharges", &doc.ExtraCharges)
	return doc
}

// decodeField intenta deserializar un campo de primer nivel; si falta o está
// malformado, deja el valor por defecto ya presente en dst.
func decodeField(fields map[string]json.RawMessage, key string, dst any) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	// Unmarshal sobre una copia: un fallo a medias no debe dejar dst inconsistente.
	tmp, err := json.Marshal(dst)
	if err == nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			_ = json.Unmarshal(tmp, dst)
		}
		return
	}
	_ = json.Unmarshal(raw, dst)
}
