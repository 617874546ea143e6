package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

var _ repository.BillRepository = (*BillRepo)(nil)

const billColumns = `id, bill_number, billed_to, customer_address, customer_phone, customer_email,
	subtotal, tax_percentage, tax_amount, discount_percentage, discount_amount, total_amount,
	payment_method, payment_details, note, issued_by, issued_at, created_at, updated_at`

const billItemColumns = `id, bill_id, description, quantity, unit_price, total, unit, notes, created_at, updated_at`

// BillRepo implementación de BillRepository (usable con pool o tx).
type BillRepo struct {
	q Querier
}

// NewBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillRepository(q Querier) *BillRepo {
	return &BillRepo{q: q}
}

// Create persiste la cabecera y sus líneas. Debe ejecutarse dentro de una tx.
func (r *BillRepo) Create(ctx context.Context, b *entity.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.BillNumber, b.BilledTo,
		nullIfEmpty(b.CustomerAddress), nullIfEmpty(b.CustomerPhone), nullIfEmpty(b.CustomerEmail),
		b.Subtotal, b.TaxPercentage, b.TaxAmount, b.DiscountPercentage, b.DiscountAmount, b.TotalAmount,
		nullIfEmpty(b.PaymentMethod), nullIfEmpty(b.PaymentDetails), nullIfEmpty(b.Note),
		b.IssuedBy, b.IssuedAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bill_number %q ya existe", domain.ErrDuplicate, b.BillNumber)
		}
		return fmt.Errorf("insert bill: %w", err)
	}
	return r.insertItems(ctx, b.Items)
}

// GetByID obtiene la factura con sus líneas.
func (r *BillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	row := r.q.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bill: %w", err)
	}
	items, err := r.itemsOf(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Items = items[b.ID]
	return b, nil
}

// List lista facturas (más recientes primero) con sus líneas.
func (r *BillRepo) List(ctx context.Context, f repository.BillFilter) ([]*entity.Bill, int, error) {
	var issuedBy *string
	if f.IssuedBy != "" {
		issuedBy = &f.IssuedBy
	}

	var total int
	if err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM bills WHERE ($1::uuid IS NULL OR issued_by = $1::uuid)`, issuedBy,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bills: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE ($1::uuid IS NULL OR issued_by = $1::uuid)
		ORDER BY issued_at DESC, created_at DESC
		LIMIT $2 OFFSET $3`,
		issuedBy, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var (
		list []*entity.Bill
		ids  []string
	)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bill: %w", err)
		}
		list = append(list, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return list, total, nil
	}

	items, err := r.itemsOf(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, b := range list {
		b.Items = items[b.ID]
	}
	return list, total, nil
}

// Update actualiza cabecera y totales; bill_number, issued_by e issued_at no cambian.
func (r *BillRepo) Update(ctx context.Context, b *entity.Bill) error {
	query := `
		UPDATE bills
		SET billed_to = $2, customer_address = $3, customer_phone = $4, customer_email = $5,
		    subtotal = $6, tax_percentage = $7, tax_amount = $8,
		    discount_percentage = $9, discount_amount = $10, total_amount = $11,
		    payment_method = $12, payment_details = $13, note = $14, updated_at = $15
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		b.ID, b.BilledTo,
		nullIfEmpty(b.CustomerAddress), nullIfEmpty(b.CustomerPhone), nullIfEmpty(b.CustomerEmail),
		b.Subtotal, b.TaxPercentage, b.TaxAmount,
		b.DiscountPercentage, b.DiscountAmount, b.TotalAmount,
		nullIfEmpty(b.PaymentMethod), nullIfEmpty(b.PaymentDetails), nullIfEmpty(b.Note), b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra las líneas actuales e inserta las nuevas. Debe ejecutarse dentro de una tx.
func (r *BillRepo) ReplaceItems(ctx context.Context, billID string, items []entity.BillItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, billID); err != nil {
		return fmt.Errorf("delete bill items: %w", err)
	}
	return r.insertItems(ctx, items)
}

// Delete elimina la factura; bill_items se borra en cascada.
func (r *BillRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BillNumberExists consulta la constraint de unicidad antes de intentar el INSERT.
func (r *BillRepo) BillNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bills WHERE bill_number = $1)`, number,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check bill number: %w", err)
	}
	return exists, nil
}

func (r *BillRepo) insertItems(ctx context.Context, items []entity.BillItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`INSERT INTO bill_items (`+billItemColumns+`, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			it.ID, it.BillID, it.Description, it.Quantity, it.UnitPrice, it.Total,
			nullIfEmpty(it.Unit), nullIfEmpty(it.Notes), it.CreatedAt, it.UpdatedAt, i,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert bill item: %w", err)
		}
	}
	return nil
}

// itemsOf carga las líneas de varias facturas en una consulta, agrupadas por bill_id.
func (r *BillRepo) itemsOf(ctx context.Context, billIDs []string) (map[string][]entity.BillItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+billItemColumns+` FROM bill_items
		WHERE bill_id = ANY($1::uuid[])
		ORDER BY bill_id, position`, billIDs)
	if err != nil {
		return nil, fmt.Errorf("list bill items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.BillItem, len(billIDs))
	for rows.Next() {
		var (
			it          entity.BillItem
			unit, notes *string
		)
		if err := rows.Scan(&it.ID, &it.BillID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total,
			&unit, &notes, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bill item: %w", err)
		}
		it.Unit = stringOrEmpty(unit)
		it.Notes = stringOrEmpty(notes)
		out[it.BillID] = append(out[it.BillID], it)
	}
	return out, rows.Err()
}

func scanBill(row pgx.Row) (*entity.Bill, error) {
	var (
		b                                   entity.Bill
		address, phone, email               *string
		paymentMethod, paymentDetails, note *string
	)
	err := row.Scan(
		&b.ID, &b.BillNumber, &b.BilledTo, &address, &phone, &email,
		&b.Subtotal, &b.TaxPercentage, &b.TaxAmount, &b.DiscountPercentage, &b.DiscountAmount, &b.TotalAmount,
		&paymentMethod, &paymentDetails, &note, &b.IssuedBy, &b.IssuedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CustomerAddress = stringOrEmpty(address)
	b.CustomerPhone = stringOrEmpty(phone)
	b.CustomerEmail = stringOrEmpty(email)
	b.PaymentMethod = stringOrEmpty(paymentMethod)
	b.PaymentDetails = stringOrEmpty(paymentDetails)
	b.Note = stringOrEmpty(note)
	return &b, nil
}
