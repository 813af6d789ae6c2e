// Package history implementa el historial de facturas guardadas: snapshots
// inmutables con campos resumen desnormalizados para el listado y un blob
// opaco con el estado completo para recarga exacta.
package history

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Facturador-api/internal/application/document"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/billing"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
)

// UseCase operaciones sobre el historial de una cuenta.
type UseCase struct {
	historyRepo repository.HistoryRepository
	pdf         InvoicePDFGenerator
}

// NewUseCase construye el caso de uso. pdf puede ser nil si el despliegue no
// expone la descarga de PDF.
func NewUseCase(historyRepo repository.HistoryRepository, pdf InvoicePDFGenerator) *UseCase {
	return &UseCase{historyRepo: historyRepo, pdf: pdf}
}

// Save congela el documento como registro de historial: calcula los totales
// al momento de guardar, desnormaliza los campos resumen y anexa el blob
// completo. No es idempotente: guardar dos veces crea dos registros.
func (uc *UseCase) Save(ctx context.Context, accountID string, doc *entity.Document) (*entity.HistoryRecord, error) {
	if accountID == "" || doc == nil {
		return nil, domain.ErrInvalidInput
	}
	blob, err := document.Encode(doc)
	if err != nil {
		return nil, err
	}
	totals := billing.Compute(doc)
	record := &entity.HistoryRecord{
		AccountID:   accountID,
		InvoiceNo:   doc.Meta.Number,
		ClientName:  doc.Client.Name,
		Date:        doc.Meta.Date,
		TotalAmount: totals.Total,
		SearchKey:   entity.BuildSearchKey(doc.Client.Name, doc.Meta.Number),
		FullState:   blob,
		CreatedAt:   time.Now(),
	}
	if err := uc.historyRepo.Append(record); err != nil {
		return nil, err
	}
	return record, nil
}

// List devuelve el historial filtrado por término libre (subcadena
// case-insensitive sobre cliente y número) y ordenado del más reciente al
// más antiguo. El gateway no garantiza orden; se ordena aquí.
func (uc *UseCase) List(ctx context.Context, accountID, search string) ([]*entity.HistoryRecord, error) {
	records, err := uc.historyRepo.List(accountID)
	if err != nil {
		return nil, err
	}
	// Slice nuevo: el filtrado no debe reordenar ni truncar el slice que
	// entregó el gateway.
	filtered := make([]*entity.HistoryRecord, 0, len(records))
	for _, r := range records {
		if r.Matches(search) {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// Load recarga el documento completo de un registro. El blob pasa por la
// frontera de deserialización tolerante: un blob corrupto produce campos por
// defecto, nunca un error de parseo.
func (uc *UseCase) Load(ctx context.Context, accountID, recordID string) (*entity.Document, error) {
	record, err := uc.historyRepo.Get(accountID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return document.Decode(record.FullState), nil
}

// Delete elimina un registro. confirmed debe venir de una confirmación
// explícita del usuario: sin ella no se toca el gateway en absoluto.
func (uc *UseCase) Delete(ctx context.Context, accountID, recordID string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmRequired
	}
	record, err := uc.historyRepo.Get(accountID, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return domain.ErrNotFound
	}
	return uc.historyRepo.Delete(accountID, recordID)
}

// Overwrite sobrescribe el contenido de un registro existente (solo la ruta
// de edición delegada de admin; para un usuario normal el historial es
// inmutable). Recalcula totales y campos resumen con el documento nuevo.
func (uc *UseCase) Overwrite(ctx context.Context, accountID, recordID string, doc *entity.Document) error {
	if accountID == "" || recordID == "" || doc == nil {
		return domain.ErrInvalidInput
	}
	blob, err := document.Encode(doc)
	if err != nil {
		return err
	}
	totals := billing.Compute(doc)
	patch := repository.HistoryRecordPatch{
		InvoiceNo:   doc.Meta.Number,
		ClientName:  doc.Client.Name,
		Date:        doc.Meta.Date,
		TotalAmount: entity.NewAmount(totals.Total),
		SearchKey:   entity.BuildSearchKey(doc.Client.Name, doc.Meta.Number),
		FullState:   blob,
	}
	return uc.historyRepo.Update(accountID, recordID, patch)
}

// RenderPDF genera la representación imprimible A4 de un registro guardado.
func (uc *UseCase) RenderPDF(ctx context.Context, accountID, recordID string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.ErrNotFound
	}
	record, err := uc.historyRepo.Get(accountID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	doc := document.Decode(record.FullState)
	return uc.pdf.RenderInvoicePDF(ctx, record, doc, billing.Compute(doc))
}
