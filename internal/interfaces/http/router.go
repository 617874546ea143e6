package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/santoshvandari/AccountingSystem/internal/application/auth"
	"github.com/santoshvandari/AccountingSystem/internal/application/billing"
	"github.com/santoshvandari/AccountingSystem/internal/application/usecase"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	BillUC        *billing.BillUseCase
	TransactionUC *usecase.TransactionUseCase
	LoginLimiter  *IPRateLimiter // nil = sin límite
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	if deps.LoginLimiter != nil {
		authGroup.Post("/login", deps.LoginLimiter.Middleware(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Rutas protegidas (Bearer Token + actor recargado de la base)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.AuthUC))

	me := protected.Group("/auth")
	me.Get("/me", authHandler.Me)
	me.Put("/me", authHandler.UpdateMe)
	me.Post("/change-password", authHandler.ChangePassword)
	me.Get("/permissions", authHandler.Permissions)

	// Users: los cajeros no administran usuarios
	users := protected.Group("/users", RequireRole(access.RoleAdmin, access.RoleManager))
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Bills
	bills := protected.Group("/bills")
	billHandler := NewBillHandler(deps.BillUC)
	bills.Get("/", billHandler.List)
	bills.Post("/", billHandler.Create)
	bills.Get("/:id", billHandler.GetByID)
	bills.Put("/:id", billHandler.Update)
	bills.Delete("/:id", billHandler.Delete)

	// Transactions (summary antes de /:id)
	txs := protected.Group("/transactions")
	txHandler := NewTransactionHandler(deps.TransactionUC)
	txs.Get("/", txHandler.List)
	txs.Post("/", txHandler.Create)
	txs.Get("/summary", txHandler.Summary)
	txs.Get("/:id", txHandler.GetByID)
	txs.Put("/:id", txHandler.Update)
	txs.Delete("/:id", txHandler.Delete)
}
