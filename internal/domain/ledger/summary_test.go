package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/ledger"
)

var (
	now = time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)
	d1  = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2  = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
)

func tx(amount string, date time.Time) entity.Transaction {
	return entity.Transaction{Amount: decimal.RequireFromString(amount), Date: date}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}

func TestSummarizeAt_EjemploReferencia(t *testing.T) {
	txs := []entity.Transaction{tx("100", d1), tx("-30", d1), tx("50", d2)}

	s, err := ledger.SummarizeAt(now, txs, d1, d2)
	require.NoError(t, err)

	assertAmount(t, "150", s.TotalIncome)
	assertAmount(t, "-30", s.TotalExpense)
	assertAmount(t, "120", s.Balance)
}

func TestSummarizeAt_FiltraFueraDeRango(t *testing.T) {
	txs := []entity.Transaction{
		tx("100", d1),
		tx("999", d1.AddDate(0, 0, -1)),
		tx("-500", d2.AddDate(0, 0, 1)),
		tx("25", d2.Add(23*time.Hour)), // mismo día que d2
	}

	s, err := ledger.SummarizeAt(now, txs, d1, d2)
	require.NoError(t, err)

	assertAmount(t, "125", s.TotalIncome)
	assertAmount(t, "0", s.TotalExpense)
	assertAmount(t, "125", s.Balance)
}

func TestSummarizeAt_IgnoraMontosCero(t *testing.T) {
	s, err := ledger.SummarizeAt(now, []entity.Transaction{tx("0", d1)}, d1, d1)
	require.NoError(t, err)
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpense.IsZero())
}

func TestSummarizeAt_SinTransaccionesDevuelveCeros(t *testing.T) {
	s, err := ledger.SummarizeAt(now, nil, d1, d2)
	require.NoError(t, err, "un rango sin datos no es un error")
	assert.True(t, s.Balance.IsZero())
}

func TestSummarizeAt_InicioPosteriorAlFin(t *testing.T) {
	s, err := ledger.SummarizeAt(now, []entity.Transaction{tx("100", d1)}, d2, d1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrInvalidRange))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, ledger.Summary{}, s, "sin resultado parcial")
}

func TestSummarizeAt_FechaFutura(t *testing.T) {
	tomorrow := now.AddDate(0, 0, 1)

	_, err := ledger.SummarizeAt(now, nil, d1, tomorrow)
	assert.True(t, errors.Is(err, ledger.ErrInvalidRange))

	_, err = ledger.SummarizeAt(now, nil, now, now)
	assert.NoError(t, err, "hoy no es futuro")
}

func TestSummarize_UsaFechaActual(t *testing.T) {
	_, err := ledger.Summarize(nil, time.Now().AddDate(0, 0, 2), time.Now().AddDate(0, 0, 3))
	assert.True(t, errors.Is(err, ledger.ErrInvalidRange))
}

func TestValidateAmount(t *testing.T) {
	for _, v := range []string{"0", "10.50", "-9999999999.99", "12.500"} {
		assert.NoError(t, ledger.ValidateAmount(decimal.RequireFromString(v)), v)
	}
	for _, v := range []string{"10.005", "10000000000", "-10000000000"} {
		err := ledger.ValidateAmount(decimal.RequireFromString(v))
		require.Error(t, err, v)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), v)
	}
}
