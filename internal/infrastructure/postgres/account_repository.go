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

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo implementación del puerto AccountRepository sobre PostgreSQL.
type AccountRepo struct {
	pool *pgxpool.Pool
}

// NewAccountRepository construye el adaptador de persistencia para cuentas.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create persiste una cuenta nueva.
func (r *AccountRepo) Create(account *entity.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(context.Background(), query,
		account.ID, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// FindByID obtiene una cuenta por ID; (nil, nil) si no existe.
func (r *AccountRepo) FindByID(id string) (*entity.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts WHERE id = $1`
	var a entity.Account
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &a, nil
}

// FindByEmail obtiene una cuenta por email; (nil, nil) si no existe.
func (r *AccountRepo) FindByEmail(email string) (*entity.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts WHERE email = $1 LIMIT 1`
	var a entity.Account
	err := r.pool.QueryRow(context.Background(), query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}
