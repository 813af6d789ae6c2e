package repository

import "github.com/jhoicas/Facturador-api/internal/domain/entity"

// HistoryRecordPatch campos actualizables de un registro por la ruta de
// edición delegada de admin (update-fields parcial).
type HistoryRecordPatch struct {
	InvoiceNo   string
	ClientName  string
	Date        string
	TotalAmount entity.Amount
	SearchKey   string
	FullState   []byte
}

// HistoryRepository define el puerto para la subcolección de historial por cuenta.
// Append asigna el ID y lo devuelve en el registro; List no garantiza orden
// (el orden y el filtrado son responsabilidad del llamador).
type HistoryRepository interface {
	Append(record *entity.HistoryRecord) error
	List(accountID string) ([]*entity.HistoryRecord, error)
	Get(accountID, recordID string) (*entity.HistoryRecord, error)
	Update(accountID, recordID string, patch HistoryRecordPatch) error
	Delete(accountID, recordID string) error
}
