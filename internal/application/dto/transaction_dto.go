package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas de transacciones y filtros (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CreateTransactionRequest body para POST /api/transactions. Date vacía = hoy.
type CreateTransactionRequest struct {
	ReceivedFrom string          `json:"received_from"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
	Date         string          `json:"date,omitempty"`
}

// UpdateTransactionRequest body para PUT /api/transactions/:id. Campos nil no se modifican.
type UpdateTransactionRequest struct {
	ReceivedFrom *string          `json:"received_from,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Note         *string          `json:"note,omitempty"`
	Date         *string          `json:"date,omitempty"`
}

// TransactionListRequest filtros de GET /api/transactions.
type TransactionListRequest struct {
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// Page extrae la paginación con valores por defecto.
func (r TransactionListRequest) Page() PageRequest {
	p := PageRequest{Limit: r.Limit, Offset: r.Offset}
	p.DefaultPage()
	return p
}

// SummaryRequest query de GET /api/transactions/summary.
type SummaryRequest struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// TransactionResponse transacción en respuestas.
type TransactionResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	ReceivedFrom string          `json:"received_from"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
	Date         string          `json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TransactionListResponse página de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// SummaryResponse resumen de ingresos/egresos. TotalExpense es negativo o cero.
type SummaryResponse struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}
