package dto

import "time"

// HistoryRecordSummary fila del listado de historial (campos desnormalizados).
type HistoryRecordSummary struct {
	ID          string    `json:"id"`
	InvoiceNo   string    `json:"invoiceNo"`
	ClientName  string    `json:"clientName"`
	Date        string    `json:"date"`
	TotalAmount string    `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DraftStatusResponse indicador de autoguardado para la UI.
type DraftStatusResponse struct {
	State string `json:"state"` // idle | saving | saved
}
