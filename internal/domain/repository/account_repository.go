package repository

import "github.com/jhoicas/Facturador-api/internal/domain/entity"

// AccountRepository define el puerto de persistencia para identidades de autenticación.
type AccountRepository interface {
	Create(account *entity.Account) error
	FindByID(id string) (*entity.Account, error)
	FindByEmail(email string) (*entity.Account, error)
}

// ProfileRepository define el puerto para perfiles de cuenta (rol + presentación).
// Delete NO cascadea: borra solo el perfil, el borrador y el historial de la
// cuenta quedan huérfanos (comportamiento aceptado, no un bug a esconder).
type ProfileRepository interface {
	Get(accountID string) (*entity.Profile, error)
	Create(profile *entity.Profile) error
	// List devuelve todos los perfiles excepto el de excludeAccountID.
	List(excludeAccountID string) ([]*entity.Profile, error)
	Delete(accountID string) error
}
