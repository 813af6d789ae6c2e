package entity

import "time"

// Roles válidos para Profile.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account es la identidad de autenticación (email + hash). Se crea en el
// registro; el Profile asociado puede no existir aún (se crea al resolver sesión).
type Account struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt, nunca en claro después de persistir
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile es el documento de rol/presentación de una cuenta.
// El rol nunca lo cambia la UI de usuario final; admin se asigna fuera de banda.
type Profile struct {
	AccountID   string
	Email       string
	Role        string // user | admin
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin indica si el perfil tiene rol administrador.
func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }
