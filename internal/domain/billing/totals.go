// Package billing contiene los servicios de dominio de facturación: cálculo de
// totales y generación de números de factura.
package billing

import (
	"fmt"

	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MoneyScale decimales con los que se persisten los importes (NUMERIC(12,2)).
const MoneyScale = 2

// Cotas exclusivas de las columnas: NUMERIC(10,2) para cantidades y NUMERIC(12,2)
// para precios e importes.
var (
	hundred     = decimal.NewFromInt(100)
	maxQuantity = decimal.New(1, 8)
	maxAmount   = decimal.New(1, 10)
)

// Totals importes derivados de una factura.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals recalcula el total de cada línea (escribe items[i].Total) y los
// importes de la factura. El impuesto se aplica sobre el subtotal ya descontado:
//
//	subtotal = Σ qty × precio
//	descuento = subtotal × descuento% / 100
//	impuesto = (subtotal − descuento) × impuesto% / 100
//	total = subtotal − descuento + impuesto
//
// Cada componente se redondea a MoneyScale antes de combinarse, así recalcular
// sobre valores ya persistidos devuelve lo mismo.
func ComputeTotals(items []entity.BillItem, taxPct, discountPct decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].Total = items[i].Quantity.Mul(items[i].UnitPrice).Round(MoneyScale)
		subtotal = subtotal.Add(items[i].Total)
	}

	discount := decimal.Zero
	if discountPct.IsPositive() {
		discount = subtotal.Mul(discountPct).Div(hundred).Round(MoneyScale)
	}

	taxable := subtotal.Sub(discount)
	tax := decimal.Zero
	if taxPct.IsPositive() {
		tax = taxable.Mul(taxPct).Div(hundred).Round(MoneyScale)
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          subtotal.Sub(discount).Add(tax),
	}
}

// ApplyTotals recalcula y asigna los totales de la factura a partir de sus líneas.
func ApplyTotals(b *entity.Bill) {
	t := ComputeTotals(b.Items, b.TaxPercentage, b.DiscountPercentage)
	b.Subtotal = t.Subtotal
	b.DiscountAmount = t.DiscountAmount
	b.TaxAmount = t.TaxAmount
	b.TotalAmount = t.Total
}

// ValidateInputs verifica líneas y porcentajes antes de calcular. Cada valor, y cada
// total resultante, debe caber en su columna sin redondeo.
func ValidateInputs(items []entity.BillItem, taxPct, discountPct decimal.Decimal) error {
	if err := validatePercentage("tax_percentage", taxPct); err != nil {
		return err
	}
	if err := validatePercentage("discount_percentage", discountPct); err != nil {
		return err
	}
	for i, it := range items {
		if it.Description == "" {
			return fmt.Errorf("%w: items[%d].description requerido", domain.ErrInvalidInput, i)
		}
		if it.Quantity.IsNegative() {
			return fmt.Errorf("%w: items[%d].quantity negativo", domain.ErrInvalidInput, i)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: items[%d].unit_price negativo", domain.ErrInvalidInput, i)
		}
		if err := checkColumn(fmt.Sprintf("items[%d].quantity", i), it.Quantity, maxQuantity); err != nil {
			return err
		}
		if err := checkColumn(fmt.Sprintf("items[%d].unit_price", i), it.UnitPrice, maxAmount); err != nil {
			return err
		}
	}

	scratch := make([]entity.BillItem, len(items))
	copy(scratch, items)
	t := ComputeTotals(scratch, taxPct, discountPct)
	for i := range scratch {
		if !scratch[i].Total.LessThan(maxAmount) {
			return fmt.Errorf("%w: items[%d] excede el importe máximo", domain.ErrInvalidInput, i)
		}
	}
	if !t.Subtotal.LessThan(maxAmount) || !t.Total.LessThan(maxAmount) {
		return fmt.Errorf("%w: el total de la factura excede el importe máximo", domain.ErrInvalidInput)
	}
	return nil
}

func validatePercentage(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s debe estar entre 0 y 100", domain.ErrInvalidInput, field)
	}
	return checkColumn(field, pct, maxAmount)
}

// checkColumn rechaza más de MoneyScale decimales y valores >= limit.
func checkColumn(field string, v, limit decimal.Decimal) error {
	if !v.Equal(v.Round(MoneyScale)) {
		return fmt.Errorf("%w: %s admite como máximo %d decimales", domain.ErrInvalidInput, field, MoneyScale)
	}
	if !v.Abs().LessThan(limit) {
		return fmt.Errorf("%w: %s fuera de rango", domain.ErrInvalidInput, field)
	}
	return nil
}
