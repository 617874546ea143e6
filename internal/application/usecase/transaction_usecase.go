package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/ledger"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

// TransactionUseCase movimientos de caja y su resumen.
type TransactionUseCase struct {
	repo   repository.TransactionRepository
	policy access.Policy
	now    func() time.Time
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(repo repository.TransactionRepository, policy access.Policy) *TransactionUseCase {
	return &TransactionUseCase{repo: repo, policy: policy, now: time.Now}
}

// Create registra un movimiento a nombre del actor. Sin fecha se usa la de hoy.
func (uc *TransactionUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if err := uc.policy.Authorize(actor, access.ActionCreateTransaction, nil); err != nil {
		return nil, err
	}
	receivedFrom := strings.TrimSpace(in.ReceivedFrom)
	if receivedFrom == "" {
		return nil, fmt.Errorf("%w: received_from requerido", domain.ErrInvalidInput)
	}
	if err := ledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	now := uc.now()
	date := ledger.Day(now)
	if in.Date != "" {
		d, err := uc.parseDate("date", in.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	tx := &entity.Transaction{
		ID:           uuid.New().String(),
		UserID:       actor.UserID,
		ReceivedFrom: receivedFrom,
		Amount:       in.Amount,
		Note:         strings.TrimSpace(in.Note),
		Date:         date,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, tx); err != nil {
		return nil, err
	}
	out := dto.NewTransactionResponse(tx)
	return &out, nil
}

// List lista con filtro opcional de fechas; los cajeros restringidos ven solo lo suyo.
func (uc *TransactionUseCase) List(ctx context.Context, actor access.Actor, in dto.TransactionListRequest) (*dto.TransactionListResponse, error) {
	page := in.Page()
	filter := repository.TransactionFilter{Limit: page.Limit, Offset: page.Offset}
	if in.StartDate != "" {
		d, err := parseDay("start_date", in.StartDate)
		if err != nil {
			return nil, err
		}
		filter.From = &d
	}
	if in.EndDate != "" {
		d, err := parseDay("end_date", in.EndDate)
		if err != nil {
			return nil, err
		}
		filter.To = &d
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: start_date posterior a end_date", ledger.ErrInvalidRange)
	}
	if uc.policy.OwnRecordsOnly(actor) {
		filter.UserID = actor.UserID
	}

	txs, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.TransactionListResponse{
		Items: make([]dto.TransactionResponse, 0, len(txs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, t := range txs {
		out.Items = append(out.Items, dto.NewTransactionResponse(t))
	}
	return out, nil
}

// GetByID obtiene una transacción visible para el actor.
func (uc *TransactionUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.TransactionResponse, error) {
	tx, err := uc.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewTransactionResponse(tx)
	return &out, nil
}

// Update modifica los campos enviados.
func (uc *TransactionUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	if err := uc.policy.Authorize(actor, access.ActionUpdateTransaction, nil); err != nil {
		return nil, err
	}
	tx, err := uc.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.ReceivedFrom != nil {
		receivedFrom := strings.TrimSpace(*in.ReceivedFrom)
		if receivedFrom == "" {
			return nil, fmt.Errorf("%w: received_from requerido", domain.ErrInvalidInput)
		}
		tx.ReceivedFrom = receivedFrom
	}
	if in.Amount != nil {
		if err := ledger.ValidateAmount(*in.Amount); err != nil {
			return nil, err
		}
		tx.Amount = *in.Amount
	}
	if in.Note != nil {
		tx.Note = strings.TrimSpace(*in.Note)
	}
	if in.Date != nil {
		d, err := uc.parseDate("date", *in.Date)
		if err != nil {
			return nil, err
		}
		tx.Date = d
	}
	tx.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, tx); err != nil {
		return nil, err
	}
	out := dto.NewTransactionResponse(tx)
	return &out, nil
}

// Delete elimina una transacción (solo superusuarios).
func (uc *TransactionUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := uc.policy.Authorize(actor, access.ActionDeleteTransaction, nil); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// Summary ingresos, egresos y balance del rango [start_date, end_date].
func (uc *TransactionUseCase) Summary(ctx context.Context, actor access.Actor, in dto.SummaryRequest) (*dto.SummaryResponse, error) {
	if in.StartDate == "" || in.EndDate == "" {
		return nil, fmt.Errorf("%w: start_date y end_date son requeridos", domain.ErrInvalidInput)
	}
	start, err := parseDay("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDay("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if err := ledger.ValidateRange(now, start, end); err != nil {
		return nil, err
	}

	userID := ""
	if uc.policy.OwnRecordsOnly(actor) {
		userID = actor.UserID
	}
	txs, err := uc.repo.ListInRange(ctx, start, end, userID)
	if err != nil {
		return nil, err
	}
	sum, err := ledger.SummarizeAt(now, txs, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.SummaryResponse{
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		TotalIncome:  sum.TotalIncome,
		TotalExpense: sum.TotalExpense,
		Balance:      sum.Balance,
	}, nil
}

func (uc *TransactionUseCase) find(ctx context.Context, actor access.Actor, id string) (*entity.Transaction, error) {
	tx, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	if uc.policy.OwnRecordsOnly(actor) && tx.UserID != actor.UserID {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}

// parseDate como parseDay pero además rechaza fechas futuras.
func (uc *TransactionUseCase) parseDate(field, s string) (time.Time, error) {
	d, err := parseDay(field, s)
	if err != nil {
		return time.Time{}, err
	}
	if d.After(ledger.Day(uc.now())) {
		return time.Time{}, fmt.Errorf("%w: %s no puede estar en el futuro", domain.ErrInvalidInput, field)
	}
	return d, nil
}

func parseDay(field, s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return d, nil
}
