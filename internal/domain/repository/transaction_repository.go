package repository

import (
	"context"
	"time"

	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
)

// TransactionFilter filtros de listado. Fechas nil = sin límite.
type TransactionFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// TransactionRepository define el puerto de persistencia para Transaction.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// List ordena por fecha y creación descendentes.
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int, error)
	// ListInRange devuelve todas las transacciones con fecha en [from, to] (días inclusive).
	ListInRange(ctx context.Context, from, to time.Time, userID string) ([]entity.Transaction, error)
	Update(ctx context.Context, tx *entity.Transaction) error
	// Delete devuelve domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
