package entity

import (
	"time"

	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
)

// Registro centinela que hereda facturas y transacciones de usuarios eliminados.
// Lo crea la migración inicial y se reasegura al arrancar.
const (
	DeletedUserID       = "00000000-0000-0000-0000-000000000000"
	DeletedUserEmail    = "deleted@example.com"
	DeletedUserUsername = "deleted_user"
	DeletedUserFullName = "Deleted User"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	Phone        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         access.Role
	IsActive     bool
	IsSuperuser  bool
	DateJoined   time.Time
	UpdatedAt    time.Time
}

// Actor proyección del usuario para el motor de autorización.
func (u *User) Actor() access.Actor {
	return access.Actor{UserID: u.ID, Role: u.Role, IsSuperuser: u.IsSuperuser}
}

// IsPlaceholder indica si es el usuario centinela de borrados.
func (u *User) IsPlaceholder() bool {
	return u.ID == DeletedUserID
}

// DeletedUser construye el registro centinela.
func DeletedUser(now time.Time) *User {
	return &User{
		ID:         DeletedUserID,
		Email:      DeletedUserEmail,
		Username:   DeletedUserUsername,
		FullName:   DeletedUserFullName,
		Role:       access.RoleCashier,
		IsActive:   false,
		DateJoined: now,
		UpdatedAt:  now,
	}
}
