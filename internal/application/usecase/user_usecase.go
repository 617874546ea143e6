package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santoshvandari/AccountingSystem/internal/application/auth"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo   repository.UserRepository
	policy access.Policy
	now    func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, policy access.Policy) *UserUseCase {
	return &UserUseCase{repo: repo, policy: policy, now: time.Now}
}

// Create da de alta un usuario. Rol vacío = cashier.
func (uc *UserUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := access.RoleCashier
	if strings.TrimSpace(in.Role) != "" {
		r, err := access.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	if err := uc.policy.Authorize(actor, access.ActionCreateUser, &access.Target{Role: role}); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username requerido", domain.ErrInvalidInput)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, auth.MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.PhoneNumber),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		DateJoined:   now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// List lista los usuarios cuyo rol es visible para el actor.
func (uc *UserUseCase) List(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.UserListResponse, error) {
	roles := uc.policy.VisibleRoles(actor)
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: listar usuarios", domain.ErrForbidden)
	}
	page.DefaultPage()
	users, total, err := uc.repo.List(ctx, roles, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{
		Items: make([]dto.UserResponse, 0, len(users)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, u := range users {
		out.Items = append(out.Items, dto.NewUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario. Cada uno puede verse a sí mismo; al resto solo si su rol es visible.
func (uc *UserUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.UserResponse, error) {
	user, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ID != actor.UserID && !slices.Contains(uc.policy.VisibleRoles(actor), user.Role) {
		return nil, fmt.Errorf("%w: ver usuario", domain.ErrForbidden)
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// Update modifica un usuario existente; el cambio de rol también pasa por la política.
func (uc *UserUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	target := &access.Target{Role: user.Role}
	if in.Role != nil {
		r, err := access.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		target.NewRole = r
	}
	if err := uc.policy.Authorize(actor, access.ActionUpdateUser, target); err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
		}
		user.Email = email
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username vacío", domain.ErrInvalidInput)
		}
		user.Username = username
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.PhoneNumber != nil {
		user.Phone = strings.TrimSpace(*in.PhoneNumber)
	}
	if target.NewRole != "" {
		user.Role = target.NewRole
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// Delete elimina un usuario; sus facturas y transacciones pasan al centinela.
func (uc *UserUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := uc.policy.Authorize(actor, access.ActionDeleteUser, nil); err != nil {
		return err
	}
	if id == entity.DeletedUserID {
		return fmt.Errorf("%w: el usuario centinela no se puede eliminar", domain.ErrForbidden)
	}
	if id == actor.UserID {
		return fmt.Errorf("%w: no puede eliminarse a sí mismo", domain.ErrInvalidInput)
	}
	return uc.repo.Delete(ctx, id)
}

// find trata al centinela como inexistente.
func (uc *UserUseCase) find(ctx context.Context, id string) (*entity.User, error) {
	if id == entity.DeletedUserID {
		return nil, domain.ErrUserNotFound
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
