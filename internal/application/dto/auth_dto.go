package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest entrada para crear una cuenta (solo admin; el rol resultante
// siempre es user, nunca se acepta desde el cliente).
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,max=200"`
}

// ProfileResponse salida de un perfil de cuenta.
type ProfileResponse struct {
	AccountID   string    `json:"account_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoginResponse token + perfil del usuario autenticado.
type LoginResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}
