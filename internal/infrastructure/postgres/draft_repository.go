package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo implementación del puerto DraftRepository sobre PostgreSQL.
// El blob del documento se guarda como JSONB en una fila por cuenta.
type DraftRepo struct {
	pool *pgxpool.Pool
}

// NewDraftRepository construye el adaptador de persistencia para borradores.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepo {
	return &DraftRepo{pool: pool}
}

// Get obtiene el borrador de una cuenta; (nil, nil) si no existe.
func (r *DraftRepo) Get(accountID string) (*entity.Draft, error) {
	query := `SELECT account_id, document, updated_at FROM drafts WHERE account_id = $1`
	var d entity.Draft
	err := r.pool.QueryRow(context.Background(), query, accountID).Scan(
		&d.AccountID, &d.Document, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return &d, nil
}

// Set sobrescribe el borrador completo de la cuenta (upsert incondicional:
// last-write-wins, sin chequeo de versión).
func (r *DraftRepo) Set(draft *entity.Draft) error {
	query := `
		INSERT INTO drafts (account_id, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(context.Background(), query,
		draft.AccountID, draft.Document, draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set draft: %w", err)
	}
	return nil
}
