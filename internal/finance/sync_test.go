package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parquesmx/backend/internal/models"
)

type sourceKey struct {
	module string
	id     uuid.UUID
	table  string
}

type fakeLedger struct {
	categories      map[string]uuid.UUID
	incomes         map[sourceKey][]*models.LedgerIncome
	failInsertFor   map[uuid.UUID]bool // keyed by SourceID
	categoryCreates int
	updates         int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		categories:    map[string]uuid.UUID{},
		incomes:       map[sourceKey][]*models.LedgerIncome{},
		failInsertFor: map[uuid.UUID]bool{},
	}
}

func (f *fakeLedger) ResolveCategory(_ context.Context, cat ConcessionCategory) (uuid.UUID, error) {
	if id, ok := f.categories[cat.Code()]; ok {
		return id, nil
	}
	id := uuid.New()
	f.categories[cat.Code()] = id
	f.categoryCreates++
	return id, nil
}

func (f *fakeLedger) InsertIncome(_ context.Context, inc *models.LedgerIncome) error {
	if inc.SourceID != nil && f.failInsertFor[*inc.SourceID] {
		return errors.New("insert refused")
	}
	inc.ID = uuid.New()
	inc.IntegrationStatus = "synced"
	inc.CreatedAt = time.Now()
	cp := *inc
	key := sourceKey{inc.SourceModule, *inc.SourceID, inc.SourceTable}
	f.incomes[key] = append(f.incomes[key], &cp)
	return nil
}

func (f *fakeLedger) FindBySource(_ context.Context, module string, sourceID uuid.UUID, table string) (*models.LedgerIncome, error) {
	rows := f.incomes[sourceKey{module, sourceID, table}]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (f *fakeLedger) UpdateBySource(_ context.Context, module string, sourceID uuid.UUID, table string, patch IncomePatch) error {
	for _, inc := range f.incomes[sourceKey{module, sourceID, table}] {
		if patch.Amount != nil {
			inc.Amount = *patch.Amount
		}
		if patch.Date != nil {
			inc.Date = *patch.Date
			inc.Month = int(patch.Date.Month())
			inc.Year = patch.Date.Year()
		}
		f.updates++
	}
	return nil
}

func (f *fakeLedger) DeleteBySource(_ context.Context, module string, sourceID uuid.UUID, table string) (bool, error) {
	key := sourceKey{module, sourceID, table}
	if len(f.incomes[key]) == 0 {
		return false, nil
	}
	delete(f.incomes, key)
	return true, nil
}

type fakeContracts struct {
	byID   map[uuid.UUID]*models.ConcessionContract
	order  []uuid.UUID
	ledger *fakeLedger
}

func newFakeContracts(ledger *fakeLedger) *fakeContracts {
	return &fakeContracts{byID: map[uuid.UUID]*models.ConcessionContract{}, ledger: ledger}
}

func (f *fakeContracts) add(c *models.ConcessionContract) {
	f.byID[c.ID] = c
	f.order = append(f.order, c.ID)
}

func (f *fakeContracts) GetContract(_ context.Context, id uuid.UUID) (*models.ConcessionContract, error) {
	return f.byID[id], nil
}

func (f *fakeContracts) UnsyncedContracts(_ context.Context) ([]models.ConcessionContract, error) {
	var out []models.ConcessionContract
	for _, id := range f.order {
		c := f.byID[id]
		if c.Status != models.ContractActive && c.Status != models.ContractPending {
			continue
		}
		key := sourceKey{models.SourceModuleConcessions, c.ID, models.SourceTableContracts}
		if len(f.ledger.incomes[key]) > 0 {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type fakePayments struct {
	byID  map[uuid.UUID]*models.ConcessionPayment
	order []uuid.UUID
}

func newFakePayments() *fakePayments {
	return &fakePayments{byID: map[uuid.UUID]*models.ConcessionPayment{}}
}

func (f *fakePayments) add(p *models.ConcessionPayment) {
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
}

func (f *fakePayments) GetPayment(_ context.Context, id uuid.UUID) (*models.ConcessionPayment, error) {
	return f.byID[id], nil
}

func (f *fakePayments) UnsyncedPaidPayments(_ context.Context) ([]models.ConcessionPayment, error) {
	var out []models.ConcessionPayment
	for _, id := range f.order {
		p := f.byID[id]
		if p.Status == models.PaymentPaid && p.FinanceIncomeID == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) SetFinanceIncomeID(_ context.Context, paymentID, incomeID uuid.UUID) error {
	f.byID[paymentID].FinanceIncomeID = &incomeID
	return nil
}

func newTestEngine() (*Engine, *fakeContracts, *fakePayments, *fakeLedger) {
	ledger := newFakeLedger()
	contracts := newFakeContracts(ledger)
	payments := newFakePayments()
	return NewEngine(contracts, payments, ledger, nil), contracts, payments, ledger
}

func contract(fee float64, start, end time.Time, status string) *models.ConcessionContract {
	return &models.ConcessionContract{
		ID:        uuid.New(),
		ParkID:    uuid.New(),
		TypeName:  "Restaurante",
		Fee:       fee,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
}

func paidPayment(amount float64) *models.ConcessionPayment {
	return &models.ConcessionPayment{
		ID:            uuid.New(),
		ContractID:    uuid.New(),
		Amount:        amount,
		PaymentDate:   d(2025, time.April, 10),
		Status:        models.PaymentPaid,
		InvoiceNumber: "F-001",
		PaymentType:   "transfer",
		ParkID:        uuid.New(),
		TypeName:      "Tienda de recuerdos",
	}
}

func TestSyncContractProration(t *testing.T) {
	require := require.New(t)
	engine, contracts, _, ledger := newTestEngine()
	con := contract(12000, d(2025, time.January, 1), d(2025, time.June, 30), models.ContractActive)
	contracts.add(con)

	n, err := engine.SyncContract(context.Background(), con.ID)
	require.NoError(err)
	require.Equal(6, n)

	rows := ledger.incomes[sourceKey{models.SourceModuleConcessions, con.ID, models.SourceTableContracts}]
	require.Len(rows, 6)
	for i, inc := range rows {
		require.Equal(float64(2000), inc.Amount)
		require.Equal(d(2025, time.Month(i+1), 1), inc.Date)
		require.Equal(i+1, inc.Month)
		require.Equal(2025, inc.Year)
		require.Equal(&con.ParkID, inc.ParkID)
	}
	require.Equal("Concesión 03/2025", rows[2].Concept)
	require.Contains(ledger.categories, CategoryRestaurant.Code())
}

func TestSyncContractSkipsInactiveStatus(t *testing.T) {
	require := require.New(t)
	engine, contracts, _, ledger := newTestEngine()
	con := contract(6000, d(2025, time.January, 1), d(2025, time.March, 31), "cancelled")
	contracts.add(con)

	n, err := engine.SyncContract(context.Background(), con.ID)
	require.NoError(err)
	require.Zero(n)
	require.Empty(ledger.incomes)
}

func TestSyncContractNotFound(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	_, err := engine.SyncContract(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrContractNotFound)
}

func TestSyncAllContractsSecondRunIsNoop(t *testing.T) {
	require := require.New(t)
	engine, contracts, _, _ := newTestEngine()
	contracts.add(contract(12000, d(2025, time.January, 1), d(2025, time.June, 30), models.ContractActive))
	contracts.add(contract(9000, d(2025, time.April, 1), d(2025, time.June, 30), models.ContractPending))

	first, err := engine.SyncAllContracts(context.Background())
	require.NoError(err)
	require.Equal(SyncResult{Synchronized: 2, Errors: 0, Total: 2}, first)

	second, err := engine.SyncAllContracts(context.Background())
	require.NoError(err)
	require.Equal(SyncResult{}, second)
}

func TestSyncAllContractsToleratesRowFailure(t *testing.T) {
	require := require.New(t)
	engine, contracts, _, ledger := newTestEngine()
	good := contract(3000, d(2025, time.January, 1), d(2025, time.March, 31), models.ContractActive)
	bad := contract(3000, d(2025, time.January, 1), d(2025, time.March, 31), models.ContractActive)
	contracts.add(bad)
	contracts.add(good)
	ledger.failInsertFor[bad.ID] = true

	result, err := engine.SyncAllContracts(context.Background())
	require.NoError(err)
	require.Equal(SyncResult{Synchronized: 1, Errors: 1, Total: 2}, result)
	require.Len(ledger.incomes[sourceKey{models.SourceModuleConcessions, good.ID, models.SourceTableContracts}], 3)
}

func TestSyncPaymentWritesBackReference(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	pay := paidPayment(1500)
	payments.add(pay)

	require.NoError(engine.SyncPayment(context.Background(), pay.ID))

	rows := ledger.incomes[sourceKey{models.SourceModuleConcessions, pay.ID, models.SourceTablePayments}]
	require.Len(rows, 1)
	require.Equal(float64(1500), rows[0].Amount)
	require.Equal("Pago de concesión F-001", rows[0].Concept)
	require.NotNil(pay.FinanceIncomeID)
	require.Equal(rows[0].ID, *pay.FinanceIncomeID)
	require.Contains(ledger.categories, CategoryRetail.Code())
}

func TestSyncPaymentNonPaidIsNoop(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	pay := paidPayment(800)
	pay.Status = models.PaymentPending
	payments.add(pay)

	require.NoError(engine.SyncPayment(context.Background(), pay.ID))
	require.Empty(ledger.incomes)
	require.Nil(pay.FinanceIncomeID)
}

func TestSyncPaymentNotFound(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	err := engine.SyncPayment(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestSyncAllPaymentsIdempotent(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	payments.add(paidPayment(100))
	payments.add(paidPayment(200))
	pending := paidPayment(300)
	pending.Status = models.PaymentPending
	payments.add(pending)

	first, err := engine.SyncAllPayments(context.Background())
	require.NoError(err)
	require.Equal(SyncResult{Synchronized: 2, Errors: 0, Total: 2}, first)

	second, err := engine.SyncAllPayments(context.Background())
	require.NoError(err)
	require.Equal(SyncResult{}, second)
	require.Len(ledger.incomes, 2)
}

func TestSyncAllPaymentsToleratesRowFailure(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	ok1 := paidPayment(100)
	bad := paidPayment(200)
	ok2 := paidPayment(300)
	payments.add(ok1)
	payments.add(bad)
	payments.add(ok2)
	ledger.failInsertFor[bad.ID] = true

	result, err := engine.SyncAllPayments(context.Background())
	require.NoError(err)
	require.Equal(SyncResult{Synchronized: 2, Errors: 1, Total: 3}, result)
	require.NotNil(ok1.FinanceIncomeID)
	require.NotNil(ok2.FinanceIncomeID)
	require.Nil(bad.FinanceIncomeID)
}

func TestCategoryResolvedOncePerTaxonomyEntry(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	payments.add(paidPayment(100))
	payments.add(paidPayment(200))

	_, err := engine.SyncAllPayments(context.Background())
	require.NoError(err)
	require.Equal(1, ledger.categoryCreates)
}

func TestUpdatePaymentWithoutLinkIsNoop(t *testing.T) {
	require := require.New(t)
	engine, _, _, ledger := newTestEngine()
	amount := 999.0

	err := engine.UpdatePayment(context.Background(), uuid.New(), IncomePatch{Amount: &amount})
	require.NoError(err)
	require.Zero(ledger.updates)
}

func TestUpdatePaymentPatchesLinkedIncome(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	pay := paidPayment(100)
	payments.add(pay)
	require.NoError(engine.SyncPayment(context.Background(), pay.ID))

	amount := 250.0
	date := d(2025, time.May, 2)
	require.NoError(engine.UpdatePayment(context.Background(), pay.ID, IncomePatch{Amount: &amount, Date: &date}))

	inc := ledger.incomes[sourceKey{models.SourceModuleConcessions, pay.ID, models.SourceTablePayments}][0]
	require.Equal(250.0, inc.Amount)
	require.Equal(date, inc.Date)
	require.Equal(5, inc.Month)
	require.Equal(2025, inc.Year)
}

func TestDeletePayment(t *testing.T) {
	require := require.New(t)
	engine, _, payments, ledger := newTestEngine()
	pay := paidPayment(100)
	payments.add(pay)
	require.NoError(engine.SyncPayment(context.Background(), pay.ID))

	require.NoError(engine.DeletePayment(context.Background(), pay.ID))
	require.Empty(ledger.incomes)

	// Deleting again is a logged no-op.
	require.NoError(engine.DeletePayment(context.Background(), pay.ID))
}

func TestGetPaymentStatus(t *testing.T) {
	require := require.New(t)
	engine, _, payments, _ := newTestEngine()
	pay := paidPayment(450)
	payments.add(pay)

	status, err := engine.GetPaymentStatus(context.Background(), pay.ID)
	require.NoError(err)
	require.False(status.Synchronized)
	require.Nil(status.LedgerAmount)

	require.NoError(engine.SyncPayment(context.Background(), pay.ID))

	status, err = engine.GetPaymentStatus(context.Background(), pay.ID)
	require.NoError(err)
	require.True(status.Synchronized)
	require.Equal(450.0, *status.LedgerAmount)
	require.Equal(pay.PaymentDate, *status.LedgerDate)

	_, err = engine.GetPaymentStatus(context.Background(), uuid.New())
	require.ErrorIs(err, ErrPaymentNotFound)
}
