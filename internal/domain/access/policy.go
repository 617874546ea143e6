package access

import (
	"fmt"

	"github.com/santoshvandari/AccountingSystem/internal/domain"
)

// Action operación mutante sujeta a autorización.
type Action string

const (
	ActionCreateUser        Action = "create_user"
	ActionUpdateUser        Action = "update_user"
	ActionDeleteUser        Action = "delete_user"
	ActionCreateBill        Action = "create_bill"
	ActionUpdateBill        Action = "update_bill"
	ActionDeleteBill        Action = "delete_bill"
	ActionCreateTransaction Action = "create_transaction"
	ActionUpdateTransaction Action = "update_transaction"
	ActionDeleteTransaction Action = "delete_transaction"
)

// Actor parte autenticada que ejecuta la operación.
type Actor struct {
	UserID      string
	Role        Role
	IsSuperuser bool
}

// Target usuario afectado por create_user / update_user.
// En create_user Role es el rol solicitado; en update_user es el rol actual
// y NewRole (opcional) el rol que se pretende asignar.
type Target struct {
	Role    Role
	NewRole Role
}

// Policy motor de autorización. El valor cero es la política por defecto;
// los campos activan variantes más estrictas.
type Policy struct {
	// BillUpdateSuperuserOnly restringe la edición de facturas a superusuarios.
	BillUpdateSuperuserOnly bool
	// CashierOwnRecordsOnly limita a los cajeros a ver solo lo que ellos crearon.
	CashierOwnRecordsOnly bool
}

// CanPerform decide con la política por defecto.
func CanPerform(actor Actor, action Action, target *Target) bool {
	return Policy{}.CanPerform(actor, action, target)
}

// CanPerform evalúa las reglas en orden de precedencia. Cualquier combinación no
// contemplada se deniega.
func (p Policy) CanPerform(actor Actor, action Action, target *Target) bool {
	if actor.IsSuperuser {
		return true
	}
	switch action {
	case ActionDeleteUser, ActionDeleteBill, ActionDeleteTransaction:
		return false
	case ActionCreateUser:
		if target == nil || !target.Role.Valid() {
			return false
		}
		switch actor.Role {
		case RoleAdmin:
			return true
		case RoleManager:
			return target.Role == RoleCashier
		}
		return false
	case ActionUpdateUser:
		if target == nil || !target.Role.Valid() {
			return false
		}
		if actor.Role == RoleAdmin {
			return true
		}
		if actor.Role != RoleManager || !actor.Role.Outranks(target.Role) {
			return false
		}
		return target.NewRole == "" || actor.Role.Outranks(target.NewRole)
	case ActionCreateBill, ActionCreateTransaction:
		return actor.Role.Valid()
	case ActionUpdateBill:
		if p.BillUpdateSuperuserOnly {
			return false
		}
		return actor.Role == RoleAdmin || actor.Role == RoleManager
	case ActionUpdateTransaction:
		return actor.Role == RoleAdmin || actor.Role == RoleManager
	}
	return false
}

// Authorize igual que CanPerform pero devuelve domain.ErrForbidden al denegar.
func (p Policy) Authorize(actor Actor, action Action, target *Target) error {
	if p.CanPerform(actor, action, target) {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrForbidden, action)
}

// OwnRecordsOnly indica si los listados/lecturas del actor se limitan a sus propios registros.
func (p Policy) OwnRecordsOnly(actor Actor) bool {
	return p.CashierOwnRecordsOnly && !actor.IsSuperuser && actor.Role == RoleCashier
}

// VisibleRoles roles que el actor puede listar. nil significa ninguno.
func (p Policy) VisibleRoles(actor Actor) []Role {
	if actor.IsSuperuser || actor.Role == RoleAdmin {
		return Roles()
	}
	if actor.Role == RoleManager {
		return []Role{RoleCashier}
	}
	return nil
}

// Permissions resumen de capacidades del actor para la UI.
type Permissions struct {
	CanCreateBills        bool `json:"can_create_bills"`
	CanEditBills          bool `json:"can_edit_bills"`
	CanDeleteBills        bool `json:"can_delete_bills"`
	CanCreateTransactions bool `json:"can_create_transactions"`
	CanEditTransactions   bool `json:"can_edit_transactions"`
	CanDeleteTransactions bool `json:"can_delete_transactions"`
	CanCreateUsers        bool `json:"can_create_users"`
	CanCreateCashiersOnly bool `json:"can_create_cashiers_only"`
	CanDeleteUsers        bool `json:"can_delete_users"`
	CanViewAllUsers       bool `json:"can_view_all_users"`
	CanViewCashiers       bool `json:"can_view_cashiers"`
}

// Permissions deriva las capacidades de CanPerform, así nunca difieren de lo que se aplica.
func (p Policy) Permissions(actor Actor) Permissions {
	can := func(a Action, target *Target) bool { return p.CanPerform(actor, a, target) }
	createCashier := can(ActionCreateUser, &Target{Role: RoleCashier})
	createManager := can(ActionCreateUser, &Target{Role: RoleManager})
	visible := p.VisibleRoles(actor)

	return Permissions{
		CanCreateBills:        can(ActionCreateBill, nil),
		CanEditBills:          can(ActionUpdateBill, nil),
		CanDeleteBills:        can(ActionDeleteBill, nil),
		CanCreateTransactions: can(ActionCreateTransaction, nil),
		CanEditTransactions:   can(ActionUpdateTransaction, nil),
		CanDeleteTransactions: can(ActionDeleteTransaction, nil),
		CanCreateUsers:        createCashier,
		CanCreateCashiersOnly: createCashier && !createManager,
		CanDeleteUsers:        can(ActionDeleteUser, nil),
		CanViewAllUsers:       len(visible) == len(Roles()),
		CanViewCashiers:       len(visible) > 0,
	}
}
