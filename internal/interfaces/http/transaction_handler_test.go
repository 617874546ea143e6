package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/application/usecase"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
	apphttp "github.com/santoshvandari/AccountingSystem/internal/interfaces/http"
	"github.com/santoshvandari/AccountingSystem/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake repositorio
// ──────────────────────────────────────────────────────────────────────────────

type memTxRepo struct {
	txs     map[string]*entity.Transaction
	failing bool
}

var errDBDown = errors.New("conexión rechazada")

func (r *memTxRepo) Create(_ context.Context, tx *entity.Transaction) error {
	if r.failing {
		return errDBDown
	}
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *memTxRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	if r.failing {
		return nil, errDBDown
	}
	t, ok := r.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memTxRepo) List(_ context.Context, _ repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	out := make([]*entity.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (r *memTxRepo) ListInRange(_ context.Context, from, to time.Time, _ string) ([]entity.Transaction, error) {
	var out []entity.Transaction
	for _, t := range r.txs {
		if !t.Date.Before(from) && !t.Date.After(to) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTxRepo) Update(_ context.Context, tx *entity.Transaction) error {
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *memTxRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.txs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.txs, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func seededTx(id string, amount int64, date string) *entity.Transaction {
	d, _ := time.Parse(dto.DateLayout, date)
	return &entity.Transaction{
		ID:           id,
		UserID:       testUserID,
		ReceivedFrom: "cliente",
		Amount:       decimal.NewFromInt(amount),
		Date:         d,
	}
}

// buildTxApp monta el handler con el actor ya resuelto en Locals.
func buildTxApp(repo *memTxRepo, actor access.Actor) *fiber.App {
	app := fiber.New()
	app.Use(apphttp.RequestLogging(logger.Nop()))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalActor, actor)
		return c.Next()
	})
	h := apphttp.NewTransactionHandler(usecase.NewTransactionUseCase(repo, access.Policy{}))
	app.Post("/transactions", h.Create)
	app.Get("/transactions/summary", h.Summary)
	app.Get("/transactions/:id", h.GetByID)
	app.Put("/transactions/:id", h.Update)
	app.Delete("/transactions/:id", h.Delete)
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var errBody dto.ErrorResponse
	if resp.StatusCode >= 400 {
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
	}
	return resp, errBody
}

var (
	adminActor   = access.Actor{UserID: testUserID, Role: access.RoleAdmin}
	cashierActor = access.Actor{UserID: testUserID, Role: access.RoleCashier}
)

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestTransactionHandler_Create_Retorna201(t *testing.T) {
	repo := &memTxRepo{txs: map[string]*entity.Transaction{}}
	app := buildTxApp(repo, cashierActor)

	resp, _ := send(t, app, http.MethodPost, "/transactions", map[string]interface{}{
		"received_from": "Ram",
		"amount":        "150.00",
		"date":          "2024-01-10",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, repo.txs, 1)
}

func TestTransactionHandler_Create_SinReceivedFrom_Retorna400(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, cashierActor)

	resp, body := send(t, app, http.MethodPost, "/transactions", map[string]interface{}{"amount": "10"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestTransactionHandler_Create_CuerpoInvalido_Retorna400(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, cashierActor)

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "INVALID_BODY")
}

func TestTransactionHandler_Update_CajeroRetorna403(t *testing.T) {
	repo := &memTxRepo{txs: map[string]*entity.Transaction{"t1": seededTx("t1", 100, "2024-01-05")}}
	app := buildTxApp(repo, cashierActor)

	resp, body := send(t, app, http.MethodPut, "/transactions/t1", map[string]interface{}{"note": "x"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestTransactionHandler_GetByID_Inexistente_Retorna404(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, adminActor)

	resp, body := send(t, app, http.MethodGet, "/transactions/nope", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestTransactionHandler_Delete_AdminRetorna403(t *testing.T) {
	repo := &memTxRepo{txs: map[string]*entity.Transaction{"t1": seededTx("t1", 100, "2024-01-05")}}
	app := buildTxApp(repo, adminActor)

	resp, _ := send(t, app, http.MethodDelete, "/transactions/t1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Len(t, repo.txs, 1, "la transacción no debe borrarse")
}

func TestTransactionHandler_Delete_SuperusuarioRetorna204(t *testing.T) {
	repo := &memTxRepo{txs: map[string]*entity.Transaction{"t1": seededTx("t1", 100, "2024-01-05")}}
	app := buildTxApp(repo, access.Actor{UserID: testUserID, Role: access.RoleAdmin, IsSuperuser: true})

	resp, _ := send(t, app, http.MethodDelete, "/transactions/t1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, repo.txs)
}

func TestTransactionHandler_ErrorDeBase_Retorna500SinDetalle(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}, failing: true}, adminActor)

	resp, body := send(t, app, http.MethodGet, "/transactions/t1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.Equal(t, "error interno", body.Message)
}

// ──────────────────────────────────────────────────────────────────────────────
// Summary
// ──────────────────────────────────────────────────────────────────────────────

func TestTransactionHandler_Summary_CalculaTotales(t *testing.T) {
	repo := &memTxRepo{txs: map[string]*entity.Transaction{
		"a": seededTx("a", 100, "2024-01-05"),
		"b": seededTx("b", 50, "2024-01-10"),
		"c": seededTx("c", -30, "2024-01-20"),
		"d": seededTx("d", 999, "2024-02-01"),
	}}
	app := buildTxApp(repo, cashierActor)

	resp, _ := send(t, app, http.MethodGet, "/transactions/summary?start_date=2024-01-01&end_date=2024-01-31", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.SummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.TotalIncome.Equal(decimal.NewFromInt(150)), "income: %s", out.TotalIncome)
	assert.True(t, out.TotalExpense.Equal(decimal.NewFromInt(-30)), "expense: %s", out.TotalExpense)
	assert.True(t, out.Balance.Equal(decimal.NewFromInt(120)), "balance: %s", out.Balance)
}

func TestTransactionHandler_Summary_RangoInvertido_Retorna400(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, adminActor)

	resp, body := send(t, app, http.MethodGet, "/transactions/summary?start_date=2024-02-01&end_date=2024-01-01", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestTransactionHandler_Summary_SinFechas_Retorna400(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, adminActor)

	resp, _ := send(t, app, http.MethodGet, "/transactions/summary", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Request id y rate limit
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestLogging_GeneraRequestID(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, adminActor)

	resp, _ := send(t, app, http.MethodGet, "/transactions/nope", nil)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}

func TestRequestLogging_RespetaRequestIDDelCliente(t *testing.T) {
	app := buildTxApp(&memTxRepo{txs: map[string]*entity.Transaction{}}, adminActor)

	req := httptest.NewRequest(http.MethodGet, "/transactions/nope", nil)
	req.Header.Set(apphttp.HeaderRequestID, "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))
}

func TestIPRateLimiter_BloqueaTrasAgotarRafaga(t *testing.T) {
	limiter := apphttp.NewIPRateLimiter(0.001, 2)
	app := fiber.New()
	app.Post("/login", limiter.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			assert.Equal(t, "1", resp.Header.Get("Retry-After"))
		}
		resp.Body.Close()
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestIPRateLimiter_SinLimite(t *testing.T) {
	limiter := apphttp.NewIPRateLimiter(0, 1)
	for i := 0; i < 50; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"))
	}
}

func TestIPRateLimiter_CupoPorIP(t *testing.T) {
	limiter := apphttp.NewIPRateLimiter(0.001, 1)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "otra IP tiene su propio bucket")
}
