package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/document"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// parseDocumentBody exige que el cuerpo de la petición sea un objeto JSON.
// Dentro del objeto la decodificación sigue siendo tolerante por campo, pero
// la recuperación silenciosa de datos ilegibles aplica a blobs ya guardados,
// no a peticiones entrantes: un cuerpo imparseable es un error del cliente.
func parseDocumentBody(c *fiber.Ctx) (*entity.Document, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil || fields == nil {
		return nil, false
	}
	return document.Decode(c.Body()), true
}
