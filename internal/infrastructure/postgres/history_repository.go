package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación del puerto HistoryRepository sobre PostgreSQL.
// Una fila por registro; el estado completo va en una columna JSONB opaca.
type HistoryRepo struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository construye el adaptador de persistencia para historial.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

// Append inserta un registro nuevo asignándole el ID, que queda en record.ID.
func (r *HistoryRepo) Append(record *entity.HistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	query := `
		INSERT INTO history_records
			(id, account_id, invoice_no, client_name, date, total_amount, search_key, full_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(context.Background(), query,
		record.ID, record.AccountID, record.InvoiceNo, record.ClientName, record.Date,
		record.TotalAmount, record.SearchKey, record.FullState, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// List devuelve los registros de la cuenta sin orden garantizado; el orden
// de presentación es responsabilidad del llamador.
func (r *HistoryRepo) List(accountID string) ([]*entity.HistoryRecord, error) {
	query := `
		SELECT id, account_id, invoice_no, client_name, date, total_amount, search_key, full_state, created_at
		FROM history_records WHERE account_id = $1`
	rows, err := r.pool.Query(context.Background(), query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	defer rows.Close()
	var list []*entity.HistoryRecord
	for rows.Next() {
		var rec entity.HistoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.AccountID, &rec.InvoiceNo, &rec.ClientName, &rec.Date,
			&rec.TotalAmount, &rec.SearchKey, &rec.FullState, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// Get obtiene un registro de la cuenta; (nil, nil) si no existe.
func (r *HistoryRepo) Get(accountID, recordID string) (*entity.HistoryRecord, error) {
	query := `
		SELECT id, account_id, invoice_no, client_name, date, total_amount, search_key, full_state, created_at
		FROM history_records WHERE account_id = $1 AND id = $2`
	var rec entity.HistoryRecord
	err := r.pool.QueryRow(context.Background(), query, accountID, recordID).Scan(
		&rec.ID, &rec.AccountID, &rec.InvoiceNo, &rec.ClientName, &rec.Date,
		&rec.TotalAmount, &rec.SearchKey, &rec.FullState, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get history record: %w", err)
	}
	return &rec, nil
}

// Update sobrescribe los campos editables del registro (ruta de edición
// delegada de admin, update-fields parcial).
func (r *HistoryRepo) Update(accountID, recordID string, patch repository.HistoryRecordPatch) error {
	query := `
		UPDATE history_records
		SET invoice_no = $3, client_name = $4, date = $5, total_amount = $6, search_key = $7, full_state = $8
		WHERE account_id = $1 AND id = $2`
	_, err := r.pool.Exec(context.Background(), query,
		accountID, recordID,
		patch.InvoiceNo, patch.ClientName, patch.Date, patch.TotalAmount.Decimal,
		patch.SearchKey, patch.FullState,
	)
	if err != nil {
		return fmt.Errorf("update history record: %w", err)
	}
	return nil
}

// Delete elimina un registro de la cuenta.
func (r *HistoryRepo) Delete(accountID, recordID string) error {
	_, err := r.pool.Exec(context.Background(),
		`DELETE FROM history_records WHERE account_id = $1 AND id = $2`, accountID, recordID)
	if err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}
	return nil
}
