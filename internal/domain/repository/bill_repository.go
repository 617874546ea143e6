package repository

import (
	"context"

	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
)

// BillFilter filtros de listado de facturas.
type BillFilter struct {
	IssuedBy string // vacío = todos
	Limit    int
	Offset   int
}

// BillRepository define el puerto de persistencia para Bill y sus líneas.
type BillRepository interface {
	// Create persiste cabecera y líneas. Devuelve domain.ErrDuplicate si bill_number ya existe.
	Create(ctx context.Context, bill *entity.Bill) error
	// GetByID incluye las líneas en orden de creación; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	List(ctx context.Context, filter BillFilter) ([]*entity.Bill, int, error)
	// Update actualiza cabecera y totales (bill_number no se modifica).
	Update(ctx context.Context, bill *entity.Bill) error
	// ReplaceItems elimina las líneas actuales e inserta las nuevas.
	ReplaceItems(ctx context.Context, billID string, items []entity.BillItem) error
	// Delete borra la factura y en cascada sus líneas; domain.ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
	BillNumberExists(ctx context.Context, number string) (bool, error)
}
