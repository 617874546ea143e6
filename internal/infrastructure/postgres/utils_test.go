package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "bills_bill_number_key"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert bill: %w", dup)), "debe detectarse envuelto")
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}), "FK no es unicidad")
	assert.False(t, isUniqueViolation(errors.New("23505")))
	assert.False(t, isUniqueViolation(nil))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))

	p := nullIfEmpty("9800000000")
	if assert.NotNil(t, p) {
		assert.Equal(t, "9800000000", *p)
	}
	assert.Equal(t, "", stringOrEmpty(nil))
	assert.Equal(t, "x", stringOrEmpty(nullIfEmpty("x")))
}
