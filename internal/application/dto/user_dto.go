package dto

import (
	"time"

	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
)

// CreateUserRequest body para POST /api/users (password en texto, se hashea en el use case).
type CreateUserRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Password    string `json:"password"`
	Role        string `json:"role"` // vacío = cashier
}

// UpdateUserRequest body para PUT /api/users/:id. Campos nil no se modifican.
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	Username    *string `json:"username,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateProfileRequest body para PUT /api/auth/me.
type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// ChangePasswordRequest body para POST /api/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT + usuario.
type LoginResponse struct {
	Access string       `json:"access"`
	User   UserResponse `json:"user"`
}

// PermissionsResponse capacidades del usuario autenticado.
type PermissionsResponse struct {
	Role        string             `json:"role"`
	IsSuperuser bool               `json:"is_superuser"`
	Permissions access.Permissions `json:"permissions"`
}
