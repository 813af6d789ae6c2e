// Package admin implementa el directorio administrativo: listado de cuentas
// y navegación del historial de cada una. La entrada a la edición delegada
// vive en el router de sesión; aquí solo se reúnen los datos del directorio.
package admin

import (
	"context"

	"github.com/jhoicas/Facturador-api/internal/application/history"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// DirectoryUseCase operaciones del directorio admin.
type DirectoryUseCase struct {
	profileRepo repository.ProfileRepository
	historyUC   *history.UseCase
}

// NewDirectoryUseCase construye el caso de uso.
func NewDirectoryUseCase(profileRepo repository.ProfileRepository, historyUC *history.UseCase) *DirectoryUseCase {
	return &DirectoryUseCase{profileRepo: profileRepo, historyUC: historyUC}
}

// ListAccounts devuelve todos los perfiles menos el del admin que consulta.
func (uc *DirectoryUseCase) ListAccounts(ctx context.Context, callerID string) ([]*entity.Profile, error) {
	return uc.profileRepo.List(callerID)
}

// AccountHistory historial de una cuenta, del más reciente al más antiguo.
func (uc *DirectoryUseCase) AccountHistory(ctx context.Context, accountID string) ([]*entity.HistoryRecord, error) {
	return uc.historyUC.List(ctx, accountID, "")
}

// DeleteAccount borra solo el documento de perfil. NO cascadea: el borrador y
// el historial de la cuenta quedan huérfanos a propósito.
func (uc *DirectoryUseCase) DeleteAccount(ctx context.Context, callerID, accountID string) error {
	if accountID == "" {
		return domain.ErrInvalidInput
	}
	if accountID == callerID {
		// Un admin no se borra a sí mismo desde el directorio.
		return domain.ErrForbidden
	}
	return uc.profileRepo.Delete(accountID)
}
