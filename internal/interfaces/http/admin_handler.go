package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/admin"
	"github.com/jhoicas/Facturador-api/internal/application/document"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/application/session"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
)

// AdminHandler maneja el directorio de cuentas y la edición delegada
// (protegido, solo rol admin).
type AdminHandler struct {
	directory *admin.DirectoryUseCase
	router    *session.Router
}

// NewAdminHandler construye el handler.
func NewAdminHandler(directory *admin.DirectoryUseCase, router *session.Router) *AdminHandler {
	return &AdminHandler{directory: directory, router: router}
}

// ListAccounts lista los perfiles de todas las cuentas menos la propia.
// GET /api/admin/accounts
func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	profiles, err := h.directory.ListAccounts(c.Context(), GetAccountID(c))
	if err != nil {
		return mapSessionErr(c, err)
	}
	out := make([]dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	return c.JSON(out)
}

// AccountHistory lista el historial de cualquier cuenta, más recientes primero.
// GET /api/admin/accounts/:id/history
func (h *AdminHandler) AccountHistory(c *fiber.Ctx) error {
	records, err := h.directory.AccountHistory(c.Context(), c.Params("id"))
	if err != nil {
		return mapSessionErr(c, err)
	}
	out := make([]dto.HistoryRecordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, toSummary(r))
	}
	return c.JSON(out)
}

// DeleteAccount elimina el perfil de una cuenta. Su historial y su borrador
// quedan huérfanos intencionalmente, no se borran en cascada.
// DELETE /api/admin/accounts/:id
func (h *AdminHandler) DeleteAccount(c *fiber.Ctx) error {
	err := h.directory.DeleteAccount(c.Context(), GetAccountID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no se puede eliminar la cuenta propia"})
		}
		return mapSessionErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EnterOverride abre una sesión de edición delegada sobre un registro ajeno.
// Mientras dure, los guardados del admin sobrescriben ese registro en lugar
// de crear registros nuevos o tocar el borrador del dueño.
// POST /api/admin/override
func (h *AdminHandler) EnterOverride(c *fiber.Ctx) error {
	var in dto.EnterOverrideRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.AccountID == "" || in.RecordID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "account_id y record_id son requeridos"})
	}
	state, err := h.router.EnterOverride(c.Context(), GetAccountID(c), in.AccountID, in.RecordID)
	if err != nil {
		return mapSessionErr(c, err)
	}
	blob, err := document.Encode(state.Document)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{
		Mode:       dto.ModeAdminOverride,
		AccountID:  state.AccountID,
		OverrideID: state.ID,
		RecordID:   state.RecordID,
		Document:   blob,
	})
}

// PushOverride recibe el documento editado; el autoguardado diferido lo
// escribe sobre el registro en edición.
// PUT /api/admin/override/:sid/document
func (h *AdminHandler) PushOverride(c *fiber.Ctx) error {
	doc, ok := parseDocumentBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "el cuerpo debe ser un documento JSON"})
	}
	if err := h.router.PushOverride(c.Params("sid"), GetAccountID(c), doc); err != nil {
		return mapSessionErr(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.DraftStatusResponse{State: "saving"})
}

// SaveOverride fuerza la escritura inmediata del documento pendiente.
// POST /api/admin/override/:sid/save
func (h *AdminHandler) SaveOverride(c *fiber.Ctx) error {
	if err := h.router.SaveOverride(c.Context(), c.Params("sid"), GetAccountID(c)); err != nil {
		return mapSessionErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// OverrideStatus devuelve el indicador de autoguardado de la sesión delegada.
// GET /api/admin/override/:sid/status
func (h *AdminHandler) OverrideStatus(c *fiber.Ctx) error {
	st, err := h.router.OverrideStatus(c.Params("sid"), GetAccountID(c))
	if err != nil {
		return mapSessionErr(c, err)
	}
	return c.JSON(dto.DraftStatusResponse{State: string(st)})
}

// ExitOverride cierra la sesión delegada descartando cambios no vaciados.
// DELETE /api/admin/override/:sid
func (h *AdminHandler) ExitOverride(c *fiber.Ctx) error {
	if err := h.router.ExitOverride(c.Params("sid"), GetAccountID(c)); err != nil {
		return mapSessionErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toProfileResponse(p *entity.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		AccountID:   p.AccountID,
		Email:       p.Email,
		Role:        p.Role,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}
}
