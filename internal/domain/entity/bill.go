package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en una factura.
const (
	PaymentCash          = "cash"
	PaymentBankTransfer  = "bank_transfer"
	PaymentCheque        = "cheque"
	PaymentDigitalWallet = "digital_wallet"
	PaymentCreditCard    = "credit_card"
	PaymentOther         = "other"
)

// ValidPaymentMethod vacío es válido (campo opcional).
func ValidPaymentMethod(m string) bool {
	switch m {
	case "", PaymentCash, PaymentBankTransfer, PaymentCheque, PaymentDigitalWallet, PaymentCreditCard, PaymentOther:
		return true
	}
	return false
}

// Bill cabecera de una factura. Subtotal, DiscountAmount, TaxAmount y TotalAmount
// siempre se derivan de Items y los porcentajes (ver billing.ApplyTotals).
type Bill struct {
	ID                 string
	BillNumber         string // único e inmutable una vez asignado
	BilledTo           string
	CustomerAddress    string
	CustomerPhone      string
	CustomerEmail      string
	Subtotal           decimal.Decimal
	TaxPercentage      decimal.Decimal
	TaxAmount          decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	PaymentMethod      string
	PaymentDetails     string
	Note               string
	IssuedBy           string // user id; DeletedUserID si el emisor fue eliminado
	IssuedAt           time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []BillItem
}

// BillItem línea de factura. Total = Quantity × UnitPrice, nunca se asigna a mano.
type BillItem struct {
	ID          string
	BillID      string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Unit        string // "piece", "hour", "kg"...
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
