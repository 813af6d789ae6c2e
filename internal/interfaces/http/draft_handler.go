package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/application/session"
)

// DraftHandler expone el borrador de trabajo y su autoguardado (protegido).
type DraftHandler struct {
	router *session.Router
}

// NewDraftHandler construye el handler.
func NewDraftHandler(router *session.Router) *DraftHandler {
	return &DraftHandler{router: router}
}

// Push recibe el documento completo tras cada edición. La escritura a la DB
// es diferida: el sincronizador coalesce ráfagas y persiste tras la ventana
// de debounce. Responde 202 porque el guardado aún no ocurrió.
// PUT /api/draft
func (h *DraftHandler) Push(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	// Campos malformados dentro del objeto caen a sus defaults; un cuerpo
	// que no es un objeto JSON se rechaza.
	doc, ok := parseDocumentBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "el cuerpo debe ser un documento JSON"})
	}
	if err := h.router.PushDocument(c.Context(), accountID, doc); err != nil {
		return mapSessionErr(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.DraftStatusResponse{State: "saving"})
}

// Status devuelve el indicador de autoguardado (idle | saving | saved).
// GET /api/draft/status
func (h *DraftHandler) Status(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	st, err := h.router.DraftStatus(accountID)
	if err != nil {
		return mapSessionErr(c, err)
	}
	return c.JSON(dto.DraftStatusResponse{State: string(st)})
}

// Flush fuerza la escritura inmediata del borrador pendiente, sin esperar
// la ventana de debounce.
// POST /api/draft/flush
func (h *DraftHandler) Flush(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.router.FlushDraft(accountID); err != nil {
		return mapSessionErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
