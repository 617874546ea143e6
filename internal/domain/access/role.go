// Package access contiene el modelo de roles y el motor de autorización.
// Todo es puro: sin I/O ni estado compartido.
package access

import (
	"fmt"
	"strings"

	"github.com/santoshvandari/AccountingSystem/internal/domain"
)

// Role rol de un usuario. El orden es total: admin > manager > cashier.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// hierarchy nivel de privilegio por rol (mayor número = más privilegio).
// Un rol ausente tiene nivel 0 y nunca supera a nadie.
var hierarchy = map[Role]int{
	RoleAdmin:   3,
	RoleManager: 2,
	RoleCashier: 1,
}

// Roles devuelve los roles válidos de mayor a menor privilegio.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCashier}
}

// ParseRole normaliza y valida un rol recibido como texto.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, s)
	}
	return r, nil
}

// Level nivel jerárquico del rol; 0 si es desconocido.
func (r Role) Level() int {
	return hierarchy[r]
}

// Valid indica si el rol pertenece a la jerarquía.
func (r Role) Valid() bool {
	_, ok := hierarchy[r]
	return ok
}

// Outranks indica si r está estrictamente por encima de other.
func (r Role) Outranks(other Role) bool {
	return r.Valid() && r.Level() > other.Level()
}

func (r Role) String() string {
	return string(r)
}
