package repository

import (
	"context"

	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get devuelven (nil, nil) si no existe.
type UserRepository interface {
	// Create devuelve domain.ErrDuplicate si email o username ya existen.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// List filtra por roles (vacío = ninguno) y excluye al usuario centinela.
	List(ctx context.Context, roles []access.Role, limit, offset int) ([]*entity.User, int, error)
	// Delete reasigna facturas y transacciones al centinela (ON DELETE SET DEFAULT).
	Delete(ctx context.Context, id string) error
	// EnsurePlaceholder inserta el centinela si falta; idempotente.
	EnsurePlaceholder(ctx context.Context, placeholder *entity.User) error
}
