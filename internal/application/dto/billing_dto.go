package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBillRequest body para POST /api/bills.
// BillNumber opcional; si va vacío se genera INV-YYMMDDXXXX.
type CreateBillRequest struct {
	BillNumber         string            `json:"bill_number,omitempty"`
	BilledTo           string            `json:"billed_to"`
	CustomerAddress    string            `json:"customer_address,omitempty"`
	CustomerPhone      string            `json:"customer_phone,omitempty"`
	CustomerEmail      string            `json:"customer_email,omitempty"`
	TaxPercentage      decimal.Decimal   `json:"tax_percentage"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage"`
	PaymentMethod      string            `json:"payment_method,omitempty"`
	PaymentDetails     string            `json:"payment_details,omitempty"`
	Note               string            `json:"note,omitempty"`
	IssuedAt           *time.Time        `json:"issued_at,omitempty"`
	Items              []BillItemRequest `json:"items"`
}

// UpdateBillRequest body para PUT /api/bills/:id. Campos nil no se modifican;
// Items no nil reemplaza todas las líneas.
type UpdateBillRequest struct {
	BilledTo           *string            `json:"billed_to,omitempty"`
	CustomerAddress    *string            `json:"customer_address,omitempty"`
	CustomerPhone      *string            `json:"customer_phone,omitempty"`
	CustomerEmail      *string            `json:"customer_email,omitempty"`
	TaxPercentage      *decimal.Decimal   `json:"tax_percentage,omitempty"`
	DiscountPercentage *decimal.Decimal   `json:"discount_percentage,omitempty"`
	PaymentMethod      *string            `json:"payment_method,omitempty"`
	PaymentDetails     *string            `json:"payment_details,omitempty"`
	Note               *string            `json:"note,omitempty"`
	Items              *[]BillItemRequest `json:"items,omitempty"`
}

// BillItemRequest línea de factura. El total siempre se calcula en el servidor.
type BillItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// BillResponse factura con sus líneas.
type BillResponse struct {
	ID                 string             `json:"id"`
	BillNumber         string             `json:"bill_number"`
	BilledTo           string             `json:"billed_to"`
	CustomerAddress    string             `json:"customer_address,omitempty"`
	CustomerPhone      string             `json:"customer_phone,omitempty"`
	CustomerEmail      string             `json:"customer_email,omitempty"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	TaxPercentage      decimal.Decimal    `json:"tax_percentage"`
	TaxAmount          decimal.Decimal    `json:"tax_amount"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	PaymentMethod      string             `json:"payment_method,omitempty"`
	PaymentDetails     string             `json:"payment_details,omitempty"`
	Note               string             `json:"note,omitempty"`
	IssuedBy           string             `json:"issued_by"`
	IssuedAt           time.Time          `json:"issued_at"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Items              []BillItemResponse `json:"items"`
}

// BillItemResponse línea en la respuesta.
type BillItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Unit        string          `json:"unit,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// BillListResponse página de facturas.
type BillListResponse struct {
	Items []BillResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
