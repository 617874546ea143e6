// seeduser crea o actualiza un superusuario y asegura el usuario centinela de borrados.
//
// Uso: go run ./cmd/seeduser <email> <password> [username]
// Usa la misma configuración de base de datos que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santoshvandari/AccountingSystem/internal/application/auth"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/infrastructure/postgres"
	"github.com/santoshvandari/AccountingSystem/pkg/config"
	"github.com/santoshvandari/AccountingSystem/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "uso: seeduser <email> <password> [username]")
		os.Exit(2)
	}
	email := strings.ToLower(strings.TrimSpace(os.Args[1]))
	password := os.Args[2]
	username := strings.SplitN(email, "@", 2)[0]
	if len(os.Args) > 3 {
		username = strings.TrimSpace(os.Args[3])
	}
	if !strings.Contains(email, "@") || len(password) < auth.MinPasswordLength {
		fmt.Fprintf(os.Stderr, "email inválido o password menor a %d caracteres\n", auth.MinPasswordLength)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	users := postgres.NewUserRepository(pool)
	now := time.Now()
	if err := users.EnsurePlaceholder(ctx, entity.DeletedUser(now)); err != nil {
		log.Fatal().Err(err).Msg("usuario centinela")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash de password")
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar usuario")
	}
	if existing != nil {
		existing.PasswordHash = string(hash)
		existing.Role = access.RoleAdmin
		existing.IsSuperuser = true
		existing.IsActive = true
		existing.UpdatedAt = now
		if err := users.Update(ctx, existing); err != nil {
			log.Fatal().Err(err).Msg("actualizar superusuario")
		}
		log.Info().Str("email", email).Str("id", existing.ID).Msg("superusuario actualizado")
		return
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		FullName:     username,
		PasswordHash: string(hash),
		Role:         access.RoleAdmin,
		IsActive:     true,
		IsSuperuser:  true,
		DateJoined:   now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("crear superusuario")
	}
	log.Info().Str("email", email).Str("id", user.ID).Msg("superusuario creado")
}
