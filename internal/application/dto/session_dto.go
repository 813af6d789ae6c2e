package dto

import "encoding/json"

// Modos de sesión expuestos al cliente.
const (
	ModeLoggedOut     = "logged_out"
	ModeUser          = "user"
	ModeAdminDir      = "admin_directory"
	ModeAdminOverride = "admin_edit_override"
)

// SessionResponse estado resuelto de la sesión: modo activo y, según el modo,
// el documento inicial (user / override) o nada (directorio admin).
type SessionResponse struct {
	Mode       string          `json:"mode"`
	AccountID  string          `json:"account_id,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
	OverrideID string          `json:"override_id,omitempty"`
	RecordID   string          `json:"record_id,omitempty"`
}

// EnterOverrideRequest entrada para abrir la edición delegada de un registro.
type EnterOverrideRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	RecordID  string `json:"record_id" validate:"required"`
}
