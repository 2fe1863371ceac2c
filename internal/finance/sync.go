package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/models"
)

var (
	// ErrContractNotFound is returned when a contract does not resolve.
	ErrContractNotFound = errors.New("concession contract not found")
	// ErrPaymentNotFound is returned when a payment does not resolve.
	ErrPaymentNotFound = errors.New("concession payment not found")
)

// ContractStore reads concession contracts (owned by the concessions module).
type ContractStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*models.ConcessionContract, error)
	// UnsyncedContracts returns active/pending contracts with no ledger rows
	// under their idempotency key. This pre-filter is the only idempotency
	// guard for contract sync; SyncContract does not re-check.
	UnsyncedContracts(ctx context.Context) ([]models.ConcessionContract, error)
}

// PaymentStore reads concession payments and writes the ledger back-reference.
type PaymentStore interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*models.ConcessionPayment, error)
	UnsyncedPaidPayments(ctx context.Context) ([]models.ConcessionPayment, error)
	SetFinanceIncomeID(ctx context.Context, paymentID, incomeID uuid.UUID) error
}

// IncomePatch holds the ledger fields UpdatePayment may change.
type IncomePatch struct {
	Amount        *float64
	Date          *time.Time
	PaymentMethod *string
	InvoiceNumber *string
}

// LedgerStore writes actual_incomes and income_categories.
type LedgerStore interface {
	// ResolveCategory returns the income category for the taxonomy entry,
	// creating it when missing. Lookup is by code, so repeated calls never
	// create duplicates.
	ResolveCategory(ctx context.Context, cat ConcessionCategory) (uuid.UUID, error)
	InsertIncome(ctx context.Context, inc *models.LedgerIncome) error
	FindBySource(ctx context.Context, module string, sourceID uuid.UUID, table string) (*models.LedgerIncome, error)
	UpdateBySource(ctx context.Context, module string, sourceID uuid.UUID, table string, patch IncomePatch) error
	DeleteBySource(ctx context.Context, module string, sourceID uuid.UUID, table string) (bool, error)
}

// SyncResult summarizes a batch run. Per-row failures are counted, never
// propagated: one malformed row must not abort its siblings.
type SyncResult struct {
	Synchronized int `json:"synchronized"`
	Errors       int `json:"errors"`
	Total        int `json:"total"`
}

// Engine reconciles concession contracts and payments into the finance ledger.
type Engine struct {
	contracts ContractStore
	payments  PaymentStore
	ledger    LedgerStore
	logger    *zap.Logger
}

// NewEngine creates a finance sync engine.
func NewEngine(contracts ContractStore, payments PaymentStore, ledger LedgerStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{contracts: contracts, payments: payments, ledger: ledger, logger: logger}
}

// SyncContract generates one prorated ledger income per month the contract
// spans. Contracts that are neither active nor pending are skipped (no-op).
// Callers MUST pre-filter already-synced contracts: this method does not check
// for existing ledger rows. SyncAllContracts is the chokepoint that enforces
// the pre-filter; do not call SyncContract from new code paths without it.
func (e *Engine) SyncContract(ctx context.Context, id uuid.UUID) (int, error) {
	contract, err := e.contracts.GetContract(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("load contract: %w", err)
	}
	if contract == nil {
		return 0, ErrContractNotFound
	}
	if contract.Status != models.ContractActive && contract.Status != models.ContractPending {
		e.logger.Info("contract sync skipped by status",
			zap.String("contract_id", id.String()), zap.String("status", contract.Status))
		return 0, nil
	}

	categoryID, err := e.ledger.ResolveCategory(ctx, CategoryForTypeName(contract.TypeName))
	if err != nil {
		return 0, fmt.Errorf("resolve category: %w", err)
	}

	schedule := ComputeMonthlySchedule(contract.StartDate, contract.EndDate, contract.Fee)
	contractID := contract.ID
	parkID := contract.ParkID
	for _, inst := range schedule {
		income := &models.LedgerIncome{
			CategoryID:   categoryID,
			Amount:       inst.Amount,
			Date:         inst.Date,
			Month:        int(inst.Date.Month()),
			Year:         inst.Date.Year(),
			Concept:      "Concesión " + inst.Date.Format("01/2006"),
			Description:  fmt.Sprintf("Ingreso mensual prorrateado del contrato de concesión %s", contractID),
			ParkID:       &parkID,
			SourceModule: models.SourceModuleConcessions,
			SourceID:     &contractID,
			SourceTable:  models.SourceTableContracts,
		}
		if err := e.ledger.InsertIncome(ctx, income); err != nil {
			return 0, fmt.Errorf("insert income %s: %w", inst.Date.Format("2006-01"), err)
		}
	}
	e.logger.Info("contract synchronized",
		zap.String("contract_id", id.String()), zap.Int("installments", len(schedule)))
	return len(schedule), nil
}

// SyncAllContracts synchronizes every contract that has no ledger rows yet.
// Row failures are logged and counted; the batch always runs to completion.
func (e *Engine) SyncAllContracts(ctx context.Context) (SyncResult, error) {
	candidates, err := e.contracts.UnsyncedContracts(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list unsynced contracts: %w", err)
	}
	result := SyncResult{Total: len(candidates)}
	for _, c := range candidates {
		if _, err := e.SyncContract(ctx, c.ID); err != nil {
			e.logger.Error("contract sync failed", zap.Error(err), zap.String("contract_id", c.ID.String()))
			result.Errors++
			continue
		}
		result.Synchronized++
	}
	return result, nil
}

// SyncPayment creates one ledger income for a paid payment and writes the
// finance_income_id back-reference. Non-paid payments are a no-op.
func (e *Engine) SyncPayment(ctx context.Context, id uuid.UUID) error {
	payment, err := e.payments.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.Status != models.PaymentPaid {
		e.logger.Info("payment sync skipped by status",
			zap.String("payment_id", id.String()), zap.String("status", payment.Status))
		return nil
	}

	categoryID, err := e.ledger.ResolveCategory(ctx, CategoryForTypeName(payment.TypeName))
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}

	paymentID := payment.ID
	parkID := payment.ParkID
	income := &models.LedgerIncome{
		CategoryID:   categoryID,
		Amount:       payment.Amount,
		Date:         payment.PaymentDate,
		Month:        int(payment.PaymentDate.Month()),
		Year:         payment.PaymentDate.Year(),
		Concept:      "Pago de concesión " + payment.InvoiceNumber,
		Description:  fmt.Sprintf("Pago de concesión %s (%s)", paymentID, payment.PaymentType),
		ParkID:       &parkID,
		SourceModule: models.SourceModuleConcessions,
		SourceID:     &paymentID,
		SourceTable:  models.SourceTablePayments,
	}
	if err := e.ledger.InsertIncome(ctx, income); err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	if err := e.payments.SetFinanceIncomeID(ctx, paymentID, income.ID); err != nil {
		return fmt.Errorf("set back-reference: %w", err)
	}
	e.logger.Info("payment synchronized",
		zap.String("payment_id", id.String()), zap.String("income_id", income.ID.String()))
	return nil
}

// SyncAllPayments synchronizes every paid payment without a ledger link, in
// candidate-query order. Re-running after a full sync synchronizes zero rows.
func (e *Engine) SyncAllPayments(ctx context.Context) (SyncResult, error) {
	candidates, err := e.payments.UnsyncedPaidPayments(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list unsynced payments: %w", err)
	}
	result := SyncResult{Total: len(candidates)}
	for _, p := range candidates {
		if err := e.SyncPayment(ctx, p.ID); err != nil {
			e.logger.Error("payment sync failed", zap.Error(err), zap.String("payment_id", p.ID.String()))
			result.Errors++
			continue
		}
		result.Synchronized++
	}
	return result, nil
}

// UpdatePayment patches the ledger income linked to a payment. When no linked
// income exists the update is a logged no-op, not an error.
func (e *Engine) UpdatePayment(ctx context.Context, paymentID uuid.UUID, patch IncomePatch) error {
	income, err := e.ledger.FindBySource(ctx, models.SourceModuleConcessions, paymentID, models.SourceTablePayments)
	if err != nil {
		return fmt.Errorf("find linked income: %w", err)
	}
	if income == nil {
		e.logger.Warn("no ledger income linked to payment, update skipped",
			zap.String("payment_id", paymentID.String()))
		return nil
	}
	if err := e.ledger.UpdateBySource(ctx, models.SourceModuleConcessions, paymentID, models.SourceTablePayments, patch); err != nil {
		return fmt.Errorf("update linked income: %w", err)
	}
	return nil
}

// DeletePayment removes the ledger income linked to a payment. Missing link is
// a no-op.
func (e *Engine) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	deleted, err := e.ledger.DeleteBySource(ctx, models.SourceModuleConcessions, paymentID, models.SourceTablePayments)
	if err != nil {
		return fmt.Errorf("delete linked income: %w", err)
	}
	if !deleted {
		e.logger.Warn("no ledger income linked to payment, delete skipped",
			zap.String("payment_id", paymentID.String()))
	}
	return nil
}

// PaymentStatus reports whether a payment is synchronized and the linked
// ledger amount/date.
type PaymentStatus struct {
	PaymentID    uuid.UUID  `json:"payment_id"`
	Synchronized bool       `json:"synchronized"`
	LedgerAmount *float64   `json:"ledger_amount,omitempty"`
	LedgerDate   *time.Time `json:"ledger_date,omitempty"`
}

// GetPaymentStatus returns the sync status of one payment.
func (e *Engine) GetPaymentStatus(ctx context.Context, paymentID uuid.UUID) (*PaymentStatus, error) {
	payment, err := e.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	status := &PaymentStatus{PaymentID: paymentID}
	income, err := e.ledger.FindBySource(ctx, models.SourceModuleConcessions, paymentID, models.SourceTablePayments)
	if err != nil {
		return nil, fmt.Errorf("find linked income: %w", err)
	}
	if income != nil {
		status.Synchronized = true
		status.LedgerAmount = &income.Amount
		status.LedgerDate = &income.Date
	}
	return status, nil
}
