package billing

import (
	"context"

	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con el repositorio
// de facturas ligado a ella. Si fn retorna error se hace rollback.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(bills repository.BillRepository) error) error
}
