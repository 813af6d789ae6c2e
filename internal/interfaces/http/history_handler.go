package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/document"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/application/history"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// HistoryHandler maneja el historial de facturas guardadas (protegido).
type HistoryHandler struct {
	uc *history.UseCase
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(uc *history.UseCase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// Save toma el documento del cuerpo y lo agrega como registro nuevo.
// Guardar dos veces el mismo documento crea dos registros: el historial
// solo crece, nunca se sobrescribe por esta ruta.
// POST /api/history
func (h *HistoryHandler) Save(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, ok := parseDocumentBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "el cuerpo debe ser un documento JSON"})
	}
	record, err := h.uc.Save(c.Context(), accountID, doc)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toSummary(record))
}

// List devuelve los registros de la cuenta, más recientes primero.
// Acepta ?search= para filtrar por cliente o número de factura.
// GET /api/history
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	records, err := h.uc.List(c.Context(), accountID, c.Query("search"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.HistoryRecordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, toSummary(r))
	}
	return c.JSON(out)
}

// Load devuelve el documento completo de un registro para recargarlo en el editor.
// GET /api/history/:id
func (h *HistoryHandler) Load(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, err := h.uc.Load(c.Context(), accountID, c.Params("id"))
	if err != nil {
		return mapHistoryErr(c, err)
	}
	blob, err := document.Encode(doc)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(blob)
}

// RenderPDF genera la representación imprimible A4 del registro.
// GET /api/history/:id/pdf
func (h *HistoryHandler) RenderPDF(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	pdfBytes, err := h.uc.RenderPDF(c.Context(), accountID, c.Params("id"))
	if err != nil {
		return mapHistoryErr(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="invoice.pdf"`)
	return c.Send(pdfBytes)
}

// Delete borra un registro. Sin ?confirm=true la petición se rechaza y no
// se toca la base de datos.
// DELETE /api/history/:id?confirm=true
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	confirmed := c.Query("confirm") == "true"
	if err := h.uc.Delete(c.Context(), accountID, c.Params("id"), confirmed); err != nil {
		if errors.Is(err, domain.ErrConfirmRequired) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFIRM_REQUIRED", Message: "agregar ?confirm=true para borrar el registro"})
		}
		return mapHistoryErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toSummary(r *entity.HistoryRecord) dto.HistoryRecordSummary {
	return dto.HistoryRecordSummary{
		ID:          r.ID,
		InvoiceNo:   r.InvoiceNo,
		ClientName:  r.ClientName,
		Date:        r.Date,
		TotalAmount: r.TotalAmount.StringFixed(2),
		CreatedAt:   r.CreatedAt,
	}
}

func mapHistoryErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al registro"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
