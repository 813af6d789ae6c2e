package repository

import "github.com/jhoicas/Facturador-api/internal/domain/entity"

// DraftRepository define el puerto para el borrador único por cuenta.
// Set es un upsert incondicional: el último escritor gana, sin chequeo de
// versión. Get devuelve (nil, nil) si la cuenta no tiene borrador.
type DraftRepository interface {
	Get(accountID string) (*entity.Draft, error)
	Set(draft *entity.Draft) error
}
