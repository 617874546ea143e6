package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	domainbilling "github.com/santoshvandari/AccountingSystem/internal/domain/billing"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

// DefaultNumberRetries intentos de INSERT con número autogenerado antes de ErrConflict.
const DefaultNumberRetries = 5

// NumberSource genera números de factura candidatos.
type NumberSource interface {
	Generate(ctx context.Context) (string, error)
}

// BillUseCase crea, edita y consulta facturas. Cabecera y líneas se escriben en
// una sola transacción.
type BillUseCase struct {
	txRunner BillingTxRunner
	billRepo repository.BillRepository
	numbers  NumberSource
	policy   access.Policy
	retries  int
	now      func() time.Time
}

// NewBillUseCase construye el caso de uso. retries < 1 usa DefaultNumberRetries.
func NewBillUseCase(txRunner BillingTxRunner, billRepo repository.BillRepository, numbers NumberSource, policy access.Policy, retries int) *BillUseCase {
	if retries < 1 {
		retries = DefaultNumberRetries
	}
	return &BillUseCase{
		txRunner: txRunner,
		billRepo: billRepo,
		numbers:  numbers,
		policy:   policy,
		retries:  retries,
		now:      time.Now,
	}
}

// CreateBill valida, calcula totales y persiste cabecera y líneas. Si el número
// autogenerado choca con la constraint UNIQUE se genera otro.
func (uc *BillUseCase) CreateBill(ctx context.Context, actor access.Actor, in dto.CreateBillRequest) (*dto.BillResponse, error) {
	if err := uc.policy.Authorize(actor, access.ActionCreateBill, nil); err != nil {
		return nil, err
	}
	billedTo := strings.TrimSpace(in.BilledTo)
	if billedTo == "" {
		return nil, fmt.Errorf("%w: billed_to requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment_method %q no soportado", domain.ErrInvalidInput, in.PaymentMethod)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la factura requiere al menos una línea", domain.ErrInvalidInput)
	}

	now := uc.now()
	bill := &entity.Bill{
		ID:                 uuid.New().String(),
		BilledTo:           billedTo,
		CustomerAddress:    strings.TrimSpace(in.CustomerAddress),
		CustomerPhone:      strings.TrimSpace(in.CustomerPhone),
		CustomerEmail:      strings.TrimSpace(in.CustomerEmail),
		TaxPercentage:      in.TaxPercentage,
		DiscountPercentage: in.DiscountPercentage,
		PaymentMethod:      in.PaymentMethod,
		PaymentDetails:     in.PaymentDetails,
		Note:               in.Note,
		IssuedBy:           actor.UserID,
		IssuedAt:           now,
		CreatedAt:          now,
		UpdatedAt:          now,
		Items:              newItems(in.Items, now),
	}
	if in.IssuedAt != nil {
		bill.IssuedAt = *in.IssuedAt
	}
	for i := range bill.Items {
		bill.Items[i].BillID = bill.ID
	}
	if err := domainbilling.ValidateInputs(bill.Items, bill.TaxPercentage, bill.DiscountPercentage); err != nil {
		return nil, err
	}
	domainbilling.ApplyTotals(bill)

	requested := strings.TrimSpace(in.BillNumber)
	if requested != "" {
		bill.BillNumber = requested
		if err := uc.insert(ctx, bill); err != nil {
			return nil, err
		}
		out := dto.NewBillResponse(bill)
		return &out, nil
	}

	for attempt := 1; attempt <= uc.retries; attempt++ {
		number, err := uc.numbers.Generate(ctx)
		if err != nil {
			return nil, err
		}
		bill.BillNumber = number
		err = uc.insert(ctx, bill)
		if err == nil {
			out := dto.NewBillResponse(bill)
			return &out, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		log.Warn().Str("bill_number", number).Int("attempt", attempt).Msg("colisión de número de factura, regenerando")
	}
	return nil, fmt.Errorf("%w: no se pudo asignar número de factura tras %d intentos", domain.ErrConflict, uc.retries)
}

// UpdateBill modifica la cabecera y, si se envían líneas, las reemplaza todas.
// Los totales se recalculan siempre.
func (uc *BillUseCase) UpdateBill(ctx context.Context, actor access.Actor, id string, in dto.UpdateBillRequest) (*dto.BillResponse, error) {
	if err := uc.policy.Authorize(actor, access.ActionUpdateBill, nil); err != nil {
		return nil, err
	}
	bill, err := uc.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.BilledTo != nil {
		billedTo := strings.TrimSpace(*in.BilledTo)
		if billedTo == "" {
			return nil, fmt.Errorf("%w: billed_to requerido", domain.ErrInvalidInput)
		}
		bill.BilledTo = billedTo
	}
	if in.CustomerAddress != nil {
		bill.CustomerAddress = strings.TrimSpace(*in.CustomerAddress)
	}
	if in.CustomerPhone != nil {
		bill.CustomerPhone = strings.TrimSpace(*in.CustomerPhone)
	}
	if in.CustomerEmail != nil {
		bill.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
	}
	if in.TaxPercentage != nil {
		bill.TaxPercentage = *in.TaxPercentage
	}
	if in.DiscountPercentage != nil {
		bill.DiscountPercentage = *in.DiscountPercentage
	}
	if in.PaymentMethod != nil {
		if !entity.ValidPaymentMethod(*in.PaymentMethod) {
			return nil, fmt.Errorf("%w: payment_method %q no soportado", domain.ErrInvalidInput, *in.PaymentMethod)
		}
		bill.PaymentMethod = *in.PaymentMethod
	}
	if in.PaymentDetails != nil {
		bill.PaymentDetails = *in.PaymentDetails
	}
	if in.Note != nil {
		bill.Note = *in.Note
	}

	now := uc.now()
	replaceItems := in.Items != nil
	if replaceItems {
		if len(*in.Items) == 0 {
			return nil, fmt.Errorf("%w: la factura requiere al menos una línea", domain.ErrInvalidInput)
		}
		bill.Items = newItems(*in.Items, now)
		for i := range bill.Items {
			bill.Items[i].BillID = bill.ID
		}
	}
	if err := domainbilling.ValidateInputs(bill.Items, bill.TaxPercentage, bill.DiscountPercentage); err != nil {
		return nil, err
	}
	domainbilling.ApplyTotals(bill)
	bill.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(bills repository.BillRepository) error {
		if replaceItems {
			if err := bills.ReplaceItems(ctx, bill.ID, bill.Items); err != nil {
				return err
			}
		}
		return bills.Update(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewBillResponse(bill)
	return &out, nil
}

// GetBill obtiene una factura con sus líneas.
func (uc *BillUseCase) GetBill(ctx context.Context, actor access.Actor, id string) (*dto.BillResponse, error) {
	bill, err := uc.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewBillResponse(bill)
	return &out, nil
}

// ListBills lista facturas, más recientes primero.
func (uc *BillUseCase) ListBills(ctx context.Context, actor access.Actor, page dto.PageRequest) (*dto.BillListResponse, error) {
	page.DefaultPage()
	filter := repository.BillFilter{Limit: page.Limit, Offset: page.Offset}
	if uc.policy.OwnRecordsOnly(actor) {
		filter.IssuedBy = actor.UserID
	}
	bills, total, err := uc.billRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.BillListResponse{
		Items: make([]dto.BillResponse, 0, len(bills)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, b := range bills {
		out.Items = append(out.Items, dto.NewBillResponse(b))
	}
	return out, nil
}

// DeleteBill elimina la factura y sus líneas (solo superusuarios).
func (uc *BillUseCase) DeleteBill(ctx context.Context, actor access.Actor, id string) error {
	if err := uc.policy.Authorize(actor, access.ActionDeleteBill, nil); err != nil {
		return err
	}
	return uc.billRepo.Delete(ctx, id)
}

func (uc *BillUseCase) insert(ctx context.Context, bill *entity.Bill) error {
	return uc.txRunner.RunBilling(ctx, func(bills repository.BillRepository) error {
		return bills.Create(ctx, bill)
	})
}

func (uc *BillUseCase) find(ctx context.Context, actor access.Actor, id string) (*entity.Bill, error) {
	bill, err := uc.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, domain.ErrNotFound
	}
	if uc.policy.OwnRecordsOnly(actor) && bill.IssuedBy != actor.UserID {
		return nil, domain.ErrNotFound
	}
	return bill, nil
}

func newItems(in []dto.BillItemRequest, now time.Time) []entity.BillItem {
	items := make([]entity.BillItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.BillItem{
			ID:          uuid.New().String(),
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Unit:        strings.TrimSpace(it.Unit),
			Notes:       it.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return items
}
