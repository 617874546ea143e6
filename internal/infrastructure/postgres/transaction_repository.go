package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, user_id, received_from, amount, note, date, created_at, updated_at`

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste una transacción.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.UserID, t.ReceivedFrom, t.Amount, nullIfEmpty(t.Note), t.Date, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// List lista con filtros opcionales de usuario y fechas.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, int, error) {
	var userID *string
	if f.UserID != "" {
		userID = &f.UserID
	}
	where := `WHERE ($1::uuid IS NULL OR user_id = $1::uuid)
		AND ($2::date IS NULL OR date >= $2::date)
		AND ($3::date IS NULL OR date <= $3::date)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, userID, f.From, f.To).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions `+where+`
		ORDER BY date DESC, created_at DESC
		LIMIT $4 OFFSET $5`,
		userID, f.From, f.To, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// ListInRange devuelve todas las transacciones con fecha entre from y to (inclusive).
func (r *TransactionRepo) ListInRange(ctx context.Context, from, to time.Time, userID string) ([]entity.Transaction, error) {
	var uid *string
	if userID != "" {
		uid = &userID
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE date BETWEEN $1::date AND $2::date
		  AND ($3::uuid IS NULL OR user_id = $3::uuid)
		ORDER BY date`,
		from, to, uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()

	var list []entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// Update actualiza una transacción; user_id no cambia.
func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transactions
		SET received_from = $2, amount = $3, note = $4, date = $5, updated_at = $6
		WHERE id = $1`,
		t.ID, t.ReceivedFrom, t.Amount, nullIfEmpty(t.Note), t.Date, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una transacción por ID.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var (
		t    entity.Transaction
		note *string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.ReceivedFrom, &t.Amount, &note, &t.Date, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Note = stringOrEmpty(note)
	return &t, nil
}
