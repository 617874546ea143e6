package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/santoshvandari/AccountingSystem/internal/application/auth"
	"github.com/santoshvandari/AccountingSystem/internal/application/billing"
	"github.com/santoshvandari/AccountingSystem/internal/application/usecase"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	domainbilling "github.com/santoshvandari/AccountingSystem/internal/domain/billing"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/infrastructure/postgres"
	httpRouter "github.com/santoshvandari/AccountingSystem/internal/interfaces/http"
	"github.com/santoshvandari/AccountingSystem/pkg/config"
	"github.com/santoshvandari/AccountingSystem/pkg/logger"

	_ "github.com/santoshvandari/AccountingSystem/docs"
)

// @title                       Accounting System API
// @version                     1.0
// @description                 Facturación, movimientos de caja y usuarios con roles.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	userRepo := postgres.NewUserRepository(pool)
	billRepo := postgres.NewBillRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	if err := userRepo.EnsurePlaceholder(ctx, entity.DeletedUser(time.Now())); err != nil {
		log.Fatal().Err(err).Msg("usuario centinela")
	}

	policy := access.Policy{
		BillUpdateSuperuserOnly: cfg.Access.BillUpdateSuperuserOnly,
		CashierOwnRecordsOnly:   cfg.Access.CashierOwnRecordsOnly,
	}

	authUC := auth.NewAuthUseCase(userRepo, policy, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo, policy)
	transactionUC := usecase.NewTransactionUseCase(transactionRepo, policy)
	billUC := billing.NewBillUseCase(
		txRunner, billRepo, domainbilling.NewNumberGenerator(billRepo),
		policy, cfg.Billing.NumberRetries,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogging(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderRequestID,
		ExposeHeaders: httpRouter.HeaderRequestID,
	}))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.HTTP.SwaggerFile,
				Path:     "docs",
				Title:    "Accounting System API",
			}))
		} else {
			log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        userUC,
		BillUC:        billUC,
		TransactionUC: transactionUC,
		LoginLimiter:  httpRouter.NewIPRateLimiter(cfg.RateLimit.LoginPerSecond, cfg.RateLimit.LoginBurst),
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
