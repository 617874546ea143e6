package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/pkg/jwt"
)

// Locals keys en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalActor  = "actor"
)

// ActorLoader resuelve el actor vigente a partir del user_id del token.
// Lo implementa *auth.AuthUseCase.
type ActorLoader interface {
	LoadActor(ctx context.Context, userID string) (access.Actor, error)
}

// AuthMiddleware valida el Bearer Token JWT y recarga el usuario desde la base de datos:
// rol, superusuario y estado activo salen de la fila actual, no de los claims.
func AuthMiddleware(jwtSecret string, actors ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}

		actor, err := actors.LoadActor(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario inexistente o inactivo"})
			}
			return writeError(c, err)
		}

		c.Locals(LocalUserID, actor.UserID)
		c.Locals(LocalRole, actor.Role.String())
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol vigente del usuario autenticado.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetActor devuelve el actor cargado por AuthMiddleware; ok=false si la ruta no pasó por él.
func GetActor(c *fiber.Ctx) (access.Actor, bool) {
	a, ok := c.Locals(LocalActor).(access.Actor)
	return a, ok
}

// RequireRole restringe la ruta a los roles indicados; los superusuarios siempre pasan.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autenticado"})
		}
		if actor.IsSuperuser {
			return c.Next()
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin acceso a este recurso"})
	}
}
