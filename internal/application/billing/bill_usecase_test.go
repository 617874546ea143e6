package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshvandari/AccountingSystem/internal/application/billing"
	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type memBillRepo struct {
	bills        map[string]*entity.Bill
	creates      int
	replaceCalls int
	// taken simula números ya ocupados en la constraint UNIQUE.
	taken map[string]bool
	// failUpdate hace fallar Update después de que ReplaceItems ya escribió.
	failUpdate error
}

func newMemBillRepo() *memBillRepo {
	return &memBillRepo{bills: map[string]*entity.Bill{}, taken: map[string]bool{}}
}

func (r *memBillRepo) Create(_ context.Context, b *entity.Bill) error {
	r.creates++
	if r.taken[b.BillNumber] {
		return domain.ErrDuplicate
	}
	for _, existing := range r.bills {
		if existing.BillNumber == b.BillNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *b
	cp.Items = append([]entity.BillItem(nil), b.Items...)
	r.bills[b.ID] = &cp
	return nil
}

func (r *memBillRepo) GetByID(_ context.Context, id string) (*entity.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	cp.Items = append([]entity.BillItem(nil), b.Items...)
	return &cp, nil
}

func (r *memBillRepo) List(_ context.Context, f repository.BillFilter) ([]*entity.Bill, int, error) {
	var out []*entity.Bill
	for _, b := range r.bills {
		if f.IssuedBy != "" && b.IssuedBy != f.IssuedBy {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *memBillRepo) Update(_ context.Context, b *entity.Bill) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	existing, ok := r.bills[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	items := existing.Items
	cp := *b
	cp.Items = items
	r.bills[b.ID] = &cp
	return nil
}

func (r *memBillRepo) ReplaceItems(_ context.Context, billID string, items []entity.BillItem) error {
	r.replaceCalls++
	b, ok := r.bills[billID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Items = append([]entity.BillItem(nil), items...)
	return nil
}

func (r *memBillRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.bills[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.bills, id)
	return nil
}

func (r *memBillRepo) BillNumberExists(_ context.Context, number string) (bool, error) {
	for _, b := range r.bills {
		if b.BillNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBillRepo) snapshot() map[string]*entity.Bill {
	out := make(map[string]*entity.Bill, len(r.bills))
	for id, b := range r.bills {
		cp := *b
		cp.Items = append([]entity.BillItem(nil), b.Items...)
		out[id] = &cp
	}
	return out
}

// fakeTxRunner ejecuta fn contra el repositorio en memoria y, como una transacción
// real, descarta todas sus escrituras si fn devuelve error.
type fakeTxRunner struct {
	repo *memBillRepo
}

func (f fakeTxRunner) RunBilling(_ context.Context, fn func(bills repository.BillRepository) error) error {
	saved := f.repo.snapshot()
	if err := fn(f.repo); err != nil {
		f.repo.bills = saved
		return err
	}
	return nil
}

// scriptedNumbers devuelve los números en orden; luego repite el último.
type scriptedNumbers struct {
	numbers []string
	calls   int
}

func (s *scriptedNumbers) Generate(context.Context) (string, error) {
	n := s.numbers[min(s.calls, len(s.numbers)-1)]
	s.calls++
	return n, nil
}

var (
	superuser = access.Actor{UserID: "su", Role: access.RoleAdmin, IsSuperuser: true}
	admin     = access.Actor{UserID: "admin-1", Role: access.RoleAdmin}
	manager   = access.Actor{UserID: "manager-1", Role: access.RoleManager}
	cashier   = access.Actor{UserID: "cashier-1", Role: access.RoleCashier}
	cashier2  = access.Actor{UserID: "cashier-2", Role: access.RoleCashier}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func newUC(repo *memBillRepo, numbers billing.NumberSource, policy access.Policy) *billing.BillUseCase {
	return billing.NewBillUseCase(fakeTxRunner{repo: repo}, repo, numbers, policy, 3)
}

func sampleRequest() dto.CreateBillRequest {
	return dto.CreateBillRequest{
		BilledTo:           "Acme Ltd",
		TaxPercentage:      dec("10"),
		DiscountPercentage: dec("10"),
		PaymentMethod:      entity.PaymentCash,
		Items: []dto.BillItemRequest{
			{Description: "Consultoría", Quantity: dec("2"), UnitPrice: dec("100")},
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateBill
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateBill_CalculaTotalesYNumera(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-2401010001"}}, access.Policy{})

	out, err := uc.CreateBill(context.Background(), cashier, sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-2401010001", out.BillNumber)
	assert.Equal(t, cashier.UserID, out.IssuedBy)
	assert.True(t, out.Subtotal.Equal(dec("200")), "subtotal %s", out.Subtotal)
	assert.True(t, out.DiscountAmount.Equal(dec("20")), "descuento %s", out.DiscountAmount)
	assert.True(t, out.TaxAmount.Equal(dec("18")), "impuesto %s", out.TaxAmount)
	assert.True(t, out.TotalAmount.Equal(dec("198")), "total %s", out.TotalAmount)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Total.Equal(dec("200")))
	assert.Len(t, repo.bills, 1)
}

func TestCreateBill_NumeroSolicitadoDuplicado(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"X"}}, access.Policy{})

	in := sampleRequest()
	in.BillNumber = "INV-MANUAL"
	_, err := uc.CreateBill(context.Background(), admin, in)
	require.NoError(t, err)

	_, err = uc.CreateBill(context.Background(), admin, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, repo.bills, 1)
}

func TestCreateBill_ReintentaAnteColision(t *testing.T) {
	repo := newMemBillRepo()
	repo.taken["INV-A"] = true
	numbers := &scriptedNumbers{numbers: []string{"INV-A", "INV-B"}}
	uc := newUC(repo, numbers, access.Policy{})

	out, err := uc.CreateBill(context.Background(), cashier, sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-B", out.BillNumber)
	assert.Equal(t, 2, numbers.calls)
	assert.Equal(t, 2, repo.creates)
}

func TestCreateBill_AgotaReintentos_RetornaConflict(t *testing.T) {
	repo := newMemBillRepo()
	repo.taken["INV-A"] = true
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-A"}}, access.Policy{})

	_, err := uc.CreateBill(context.Background(), cashier, sampleRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, repo.creates, "un intento por reintento configurado")
	assert.Empty(t, repo.bills)
}

func TestCreateBill_Validaciones(t *testing.T) {
	uc := newUC(newMemBillRepo(), &scriptedNumbers{numbers: []string{"N"}}, access.Policy{})

	cases := map[string]func(*dto.CreateBillRequest){
		"sin billed_to":            func(r *dto.CreateBillRequest) { r.BilledTo = "  " },
		"sin líneas":               func(r *dto.CreateBillRequest) { r.Items = nil },
		"método inválido":          func(r *dto.CreateBillRequest) { r.PaymentMethod = "bitcoin" },
		"impuesto > 100":           func(r *dto.CreateBillRequest) { r.TaxPercentage = dec("101") },
		"descuento negativo":       func(r *dto.CreateBillRequest) { r.DiscountPercentage = dec("-1") },
		"cantidad negativa":        func(r *dto.CreateBillRequest) { r.Items[0].Quantity = dec("-1") },
		"descripción vacía":        func(r *dto.CreateBillRequest) { r.Items[0].Description = "" },
		"precio negativo":          func(r *dto.CreateBillRequest) { r.Items[0].UnitPrice = dec("-5") },
		"precio con 3 decimales":   func(r *dto.CreateBillRequest) { r.Items[0].UnitPrice = dec("10.005") },
		"impuesto con 3 decimales": func(r *dto.CreateBillRequest) { r.TaxPercentage = dec("12.345") },
		"total excede la columna":  func(r *dto.CreateBillRequest) { r.Items[0].UnitPrice = dec("9999999999") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleRequest()
			mutate(&in)
			_, err := uc.CreateBill(context.Background(), cashier, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateBill_ErrorDelGenerador(t *testing.T) {
	boom := errors.New("db caída")
	uc := billing.NewBillUseCase(fakeTxRunner{repo: newMemBillRepo()}, newMemBillRepo(), failingNumbers{err: boom}, access.Policy{}, 3)

	_, err := uc.CreateBill(context.Background(), cashier, sampleRequest())
	assert.ErrorIs(t, err, boom)
}

type failingNumbers struct{ err error }

func (f failingNumbers) Generate(context.Context) (string, error) { return "", f.err }

// ─────────────────────────────────────────────────────────────────────────────
// UpdateBill
// ─────────────────────────────────────────────────────────────────────────────

func createdBill(t *testing.T, uc *billing.BillUseCase, actor access.Actor) *dto.BillResponse {
	t.Helper()
	out, err := uc.CreateBill(context.Background(), actor, sampleRequest())
	require.NoError(t, err)
	return out
}

func TestUpdateBill_ReemplazaLineasYRecalcula(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	bill := createdBill(t, uc, cashier)

	items := []dto.BillItemRequest{
		{Description: "Horas", Quantity: dec("3"), UnitPrice: dec("50")},
		{Description: "Viáticos", Quantity: dec("1"), UnitPrice: dec("50")},
	}
	out, err := uc.UpdateBill(context.Background(), manager, bill.ID, dto.UpdateBillRequest{
		DiscountPercentage: ptr(dec("0")),
		Items:              &items,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-1", out.BillNumber, "el número no cambia")
	assert.True(t, out.Subtotal.Equal(dec("200")))
	assert.True(t, out.DiscountAmount.IsZero())
	assert.True(t, out.TaxAmount.Equal(dec("20")))
	assert.True(t, out.TotalAmount.Equal(dec("220")))
	assert.Equal(t, 1, repo.replaceCalls)

	stored, _ := repo.GetByID(context.Background(), bill.ID)
	assert.Len(t, stored.Items, 2)
	assert.True(t, stored.TotalAmount.Equal(dec("220")))
}

func TestUpdateBill_FalloEnUpdateNoDejaLineasParciales(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	bill := createdBill(t, uc, cashier)

	boom := errors.New("conexión perdida")
	repo.failUpdate = boom
	items := []dto.BillItemRequest{
		{Description: "Horas", Quantity: dec("3"), UnitPrice: dec("50")},
		{Description: "Viáticos", Quantity: dec("1"), UnitPrice: dec("50")},
	}
	_, err := uc.UpdateBill(context.Background(), admin, bill.ID, dto.UpdateBillRequest{Items: &items})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.replaceCalls, "las líneas se reemplazaron dentro de la transacción")

	stored, _ := repo.GetByID(context.Background(), bill.ID)
	require.Len(t, stored.Items, 1, "las líneas nuevas se descartan con el rollback")
	assert.Equal(t, "Consultoría", stored.Items[0].Description)
	assert.True(t, stored.Subtotal.Equal(dec("200")))
	assert.True(t, stored.TotalAmount.Equal(dec("198")))
}

func TestUpdateBill_SoloCabeceraNoTocaLineas(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	bill := createdBill(t, uc, cashier)

	out, err := uc.UpdateBill(context.Background(), admin, bill.ID, dto.UpdateBillRequest{BilledTo: ptr("Globex")})
	require.NoError(t, err)

	assert.Equal(t, "Globex", out.BilledTo)
	assert.True(t, out.TotalAmount.Equal(dec("198")))
	assert.Equal(t, 0, repo.replaceCalls)
}

func TestUpdateBill_Permisos(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	bill := createdBill(t, uc, cashier)

	_, err := uc.UpdateBill(context.Background(), cashier, bill.ID, dto.UpdateBillRequest{Note: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	strict := newUC(repo, &scriptedNumbers{numbers: []string{"INV-2"}}, access.Policy{BillUpdateSuperuserOnly: true})
	_, err = strict.UpdateBill(context.Background(), admin, bill.ID, dto.UpdateBillRequest{Note: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = strict.UpdateBill(context.Background(), superuser, bill.ID, dto.UpdateBillRequest{Note: ptr("x")})
	assert.NoError(t, err)
}

func TestUpdateBill_LineasVaciasRechazadas(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	bill := createdBill(t, uc, cashier)

	empty := []dto.BillItemRequest{}
	_, err := uc.UpdateBill(context.Background(), admin, bill.ID, dto.UpdateBillRequest{Items: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateBill_Inexistente(t *testing.T) {
	uc := newUC(newMemBillRepo(), &scriptedNumbers{numbers: []string{"N"}}, access.Policy{})

	_, err := uc.UpdateBill(context.Background(), admin, "nope", dto.UpdateBillRequest{Note: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lectura y borrado
// ─────────────────────────────────────────────────────────────────────────────

func TestGetBill_RegistrosPropios(t *testing.T) {
	repo := newMemBillRepo()
	policy := access.Policy{CashierOwnRecordsOnly: true}
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, policy)
	bill := createdBill(t, uc, cashier)

	_, err := uc.GetBill(context.Background(), cashier, bill.ID)
	assert.NoError(t, err)

	_, err = uc.GetBill(context.Background(), cashier2, bill.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro cajero no la ve")

	_, err = uc.GetBill(context.Background(), manager, bill.ID)
	assert.NoError(t, err)
}

func TestListBills_FiltraPorEmisorSoloConPoliticaEstricta(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	createdBill(t, uc, cashier)
	uc2 := newUC(repo, &scriptedNumbers{numbers: []string{"INV-2"}}, access.Policy{})
	createdBill(t, uc2, cashier2)

	all, err := uc.ListBills(context.Background(), cashier, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)

	strict := newUC(repo, &scriptedNumbers{numbers: []string{"X"}}, access.Policy{CashierOwnRecordsOnly: true})
	own, err := strict.ListBills(context.Background(), cashier, dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, own.Page.Total)
	assert.Equal(t, 100, own.Page.Limit)
}

func TestDeleteBill_SoloSuperusuario(t *testing.T) {
	repo := newMemBillRepo()
	uc := newUC(repo, &scriptedNumbers{numbers: []string{"INV-1"}}, access.Policy{})
	bill := createdBill(t, uc, cashier)

	for _, actor := range []access.Actor{admin, manager, cashier} {
		assert.ErrorIs(t, uc.DeleteBill(context.Background(), actor, bill.ID), domain.ErrForbidden)
	}
	require.NoError(t, uc.DeleteBill(context.Background(), superuser, bill.ID))
	assert.Empty(t, repo.bills)

	assert.ErrorIs(t, uc.DeleteBill(context.Background(), superuser, bill.ID), domain.ErrNotFound)
}
