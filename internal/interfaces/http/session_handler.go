package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturador-api/internal/application/document"
	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/application/session"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/pkg/jwt"
)

// SessionHandler resuelve el estado de sesión y el cierre de la misma.
// GET /api/session acepta peticiones sin token: en ese caso el modo es
// logged_out en vez de 401, porque el cliente lo consulta al arrancar.
type SessionHandler struct {
	router    *session.Router
	jwtSecret string
}

// NewSessionHandler construye el handler de sesión.
func NewSessionHandler(router *session.Router, jwtSecret string) *SessionHandler {
	return &SessionHandler{router: router, jwtSecret: jwtSecret}
}

// Resolve devuelve el modo de la sesión y su documento inicial.
// GET /api/session
func (h *SessionHandler) Resolve(c *fiber.Ctx) error {
	accountID, email := h.identity(c)

	state, err := h.router.Resolve(c.Context(), accountID, email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.SessionResponse{Mode: string(state.Mode), AccountID: state.AccountID}
	if state.Document != nil {
		blob, err := document.Encode(state.Document)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		out.Document = blob
	}
	return c.JSON(out)
}

// Logout descarta la sesión en memoria (sincronizador de borrador incluido).
// El borrador pendiente no vaciado se pierde, igual que al cerrar la pestaña.
// POST /api/session/logout
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	accountID := GetAccountID(c)
	if accountID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	h.router.SignOut(accountID)
	return c.SendStatus(fiber.StatusNoContent)
}

// identity extrae la identidad del Bearer token si está presente y es válido.
// Token ausente o inválido no es error aquí: equivale a no haber iniciado sesión.
func (h *SessionHandler) identity(c *fiber.Ctx) (accountID, email string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ""
	}
	accountID, email, _, err := jwt.Parse(h.jwtSecret, strings.TrimSpace(parts[1]))
	if err != nil {
		return "", ""
	}
	return accountID, email
}

// mapSessionErr traduce errores de sesión a HTTP.
func mapSessionErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_SESSION", Message: "no hay sesión activa; resolver GET /api/session primero"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
