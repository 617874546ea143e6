package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, username, full_name, phone_number, password_hash, role, is_active, is_superuser, date_joined, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FullName, nullIfEmpty(user.Phone), user.PasswordHash,
		string(user.Role), user.IsActive, user.IsSuperuser, user.DateJoined, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email o username ya registrado", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (ya normalizado a minúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, full_name = $4, phone_number = $5, password_hash = $6,
		    role = $7, is_active = $8, is_superuser = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FullName, nullIfEmpty(user.Phone), user.PasswordHash,
		string(user.Role), user.IsActive, user.IsSuperuser, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email o username ya registrado", domain.ErrDuplicate)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios de los roles dados con paginación, más recientes primero.
func (r *UserRepo) List(ctx context.Context, roles []access.Role, limit, offset int) ([]*entity.User, int, error) {
	if len(roles) == 0 {
		return nil, 0, nil
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	var total int
	if err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ANY($1) AND id <> $2`, names, entity.DeletedUserID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = ANY($1) AND id <> $2
		ORDER BY date_joined DESC LIMIT $3 OFFSET $4`,
		names, entity.DeletedUserID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// Delete elimina un usuario; las FK con ON DELETE SET DEFAULT reasignan sus registros al centinela.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1 AND id <> $2`, id, entity.DeletedUserID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsurePlaceholder inserta el centinela si no existe.
func (r *UserRepo) EnsurePlaceholder(ctx context.Context, p *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, NULL, '', $5, FALSE, FALSE, $6, $7)
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query,
		p.ID, p.Email, p.Username, p.FullName, string(p.Role), p.DateJoined, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("ensure placeholder user: %w", err)
	}
	return nil
}

// scanUser devuelve (nil, nil) si no hay fila.
func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u     entity.User
		phone *string
		role  string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &phone, &u.PasswordHash,
		&role, &u.IsActive, &u.IsSuperuser, &u.DateJoined, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Phone = stringOrEmpty(phone)
	u.Role = access.Role(role)
	return &u, nil
}
