package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction movimiento de caja. Amount positivo = ingreso, negativo = egreso.
type Transaction struct {
	ID           string
	UserID       string
	ReceivedFrom string
	Amount       decimal.Decimal
	Note         string
	Date         time.Time // solo importa el día
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
