package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
	"github.com/santoshvandari/AccountingSystem/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

// dummyHash se compara cuando el email no corresponde a un usuario con contraseña,
// así el tiempo de respuesta no revela qué emails existen.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("accounting-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic("generar hash de referencia: " + err.Error())
	}
	return h
})

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login, perfil propio y resolución del actor de cada petición.
type AuthUseCase struct {
	userRepo repository.UserRepository
	policy   access.Policy
	jwtCfg   JWTConfig
	now      func() time.Time
	compare  func(hash, password []byte) error
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, policy access.Policy, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, policy: policy, jwtCfg: jwtCfg, now: time.Now, compare: bcrypt.CompareHashAndPassword}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsPlaceholder() || user.PasswordHash == "" {
		_ = uc.compare(dummyHash(), []byte(in.Password))
		return nil, domain.ErrUnauthorized
	}
	if err := uc.compare([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: cuenta desactivada", domain.ErrUnauthorized)
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role.String(), user.IsSuperuser, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Access: token, User: dto.NewUserResponse(user)}, nil
}

// LoadActor recarga el usuario del token en cada petición: el rol puede haber
// cambiado desde que se emitió el JWT.
func (uc *AuthUseCase) LoadActor(ctx context.Context, userID string) (access.Actor, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return access.Actor{}, err
	}
	if user == nil || user.IsPlaceholder() || !user.IsActive {
		return access.Actor{}, domain.ErrUnauthorized
	}
	return user.Actor(), nil
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// UpdateProfile modifica los datos no sensibles del propio usuario (rol y estado no).
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return nil, err
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
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// ChangePassword verifica la contraseña actual y la confirmación antes de re-hashear.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	if len(in.NewPassword) < MinPasswordLength {
		return fmt.Errorf("%w: la nueva contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
	}
	if in.NewPassword != in.ConfirmPassword {
		return fmt.Errorf("%w: la confirmación no coincide", domain.ErrInvalidInput)
	}
	user, err := uc.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if err := uc.compare([]byte(user.PasswordHash), []byte(in.OldPassword)); err != nil {
		return fmt.Errorf("%w: la contraseña actual es incorrecta", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = uc.now()
	return uc.userRepo.Update(ctx, user)
}

// Permissions capacidades del actor según la política configurada.
func (uc *AuthUseCase) Permissions(actor access.Actor) dto.PermissionsResponse {
	return dto.PermissionsResponse{
		Role:        actor.Role.String(),
		IsSuperuser: actor.IsSuperuser,
		Permissions: uc.policy.Permissions(actor),
	}
}

func (uc *AuthUseCase) mustGet(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
