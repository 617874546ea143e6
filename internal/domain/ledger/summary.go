// Package ledger agrega movimientos de caja en resúmenes de ingresos y egresos.
package ledger

import (
	"fmt"
	"time"

	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrInvalidRange rango de fechas inválido (inicio posterior al fin o fechas futuras).
var ErrInvalidRange = fmt.Errorf("%w: rango de fechas inválido", domain.ErrInvalidInput)

// maxAmount cota exclusiva de transactions.amount, NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// ValidateAmount exige un importe con a lo sumo dos decimales cuyo valor absoluto
// quepa en la columna. El signo indica ingreso o egreso.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount admite como máximo 2 decimales", domain.ErrInvalidInput)
	}
	if !amount.Abs().LessThan(maxAmount) {
		return fmt.Errorf("%w: amount fuera de rango", domain.ErrInvalidInput)
	}
	return nil
}

// Summary totales de un rango. TotalExpense conserva el signo negativo.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// Summarize usa la fecha actual como referencia para rechazar fechas futuras.
func Summarize(txs []entity.Transaction, start, end time.Time) (Summary, error) {
	return SummarizeAt(time.Now(), txs, start, end)
}

// SummarizeAt suma los importes con fecha dentro de [start, end] (días completos, inclusive).
func SummarizeAt(now time.Time, txs []entity.Transaction, start, end time.Time) (Summary, error) {
	if err := ValidateRange(now, start, end); err != nil {
		return Summary{}, err
	}
	from, to := Day(start), Day(end)

	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		day := Day(tx.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		switch {
		case tx.Amount.IsPositive():
			income = income.Add(tx.Amount)
		case tx.Amount.IsNegative():
			expense = expense.Add(tx.Amount)
		}
	}
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Add(expense),
	}, nil
}

// ValidateRange rechaza start > end y cualquier fecha posterior a hoy.
func ValidateRange(now, start, end time.Time) error {
	today := Day(now)
	if Day(start).After(today) || Day(end).After(today) {
		return fmt.Errorf("%w: la fecha no puede estar en el futuro", ErrInvalidRange)
	}
	if Day(start).After(Day(end)) {
		return fmt.Errorf("%w: start_date posterior a end_date", ErrInvalidRange)
	}
	return nil
}

// Day día de calendario de t (en su propia zona) normalizado a medianoche UTC.
func Day(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
