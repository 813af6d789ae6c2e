package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo implementación del puerto ProfileRepository sobre PostgreSQL.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepository construye el adaptador de persistencia para perfiles.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Get obtiene el perfil de una cuenta; (nil, nil) si no existe.
func (r *ProfileRepo) Get(accountID string) (*entity.Profile, error) {
	query := `
		SELECT account_id, email, role, display_name, created_at, updated_at
		FROM profiles WHERE account_id = $1`
	var p entity.Profile
	err := r.pool.QueryRow(context.Background(), query, accountID).Scan(
		&p.AccountID, &p.Email, &p.Role, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Create persiste un perfil nuevo.
func (r *ProfileRepo) Create(profile *entity.Profile) error {
	query := `
		INSERT INTO profiles (account_id, email, role, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(context.Background(), query,
		profile.AccountID, profile.Email, profile.Role, profile.DisplayName,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// List devuelve todos los perfiles excepto el indicado (el admin que consulta).
func (r *ProfileRepo) List(excludeAccountID string) ([]*entity.Profile, error) {
	query := `
		SELECT account_id, email, role, display_name, created_at, updated_at
		FROM profiles WHERE account_id <> $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(context.Background(), query, excludeAccountID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		var p entity.Profile
		if err := rows.Scan(&p.AccountID, &p.Email, &p.Role, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina solo el perfil. El borrador y el historial de la cuenta no
// se tocan (sin cascade, datos huérfanos aceptados).
func (r *ProfileRepo) Delete(accountID string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM profiles WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
