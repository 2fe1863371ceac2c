package concessions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Repository reads concession contracts and payments. The tables belong to the
// concessions module; the only write here is the finance_income_id
// back-reference on payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a concessions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetContract returns a contract joined with its type name, or nil when absent.
func (r *Repository) GetContract(ctx context.Context, id uuid.UUID) (*models.ConcessionContract, error) {
	const q = `SELECT c.id, c.park_id, c.concessionaire_id, c.concession_type_id, t.name, c.fee, c.start_date, c.end_date, c.status, c.created_at
		FROM concession_contracts c
		JOIN concession_types t ON t.id = c.concession_type_id
		WHERE c.id = $1`
	var con models.ConcessionContract
	err := r.pool.QueryRow(ctx, q, id).Scan(&con.ID, &con.ParkID, &con.ConcessionaireID,
		&con.ConcessionTypeID, &con.TypeName, &con.Fee, &con.StartDate, &con.EndDate, &con.Status, &con.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &con, nil
}

// UnsyncedContracts returns active/pending contracts that have no ledger rows
// under their idempotency key, in creation order.
func (r *Repository) UnsyncedContracts(ctx context.Context) ([]models.ConcessionContract, error) {
	const q = `SELECT c.id, c.park_id, c.concessionaire_id, c.concession_type_id, t.name, c.fee, c.start_date, c.end_date, c.status, c.created_at
		FROM concession_contracts c
		JOIN concession_types t ON t.id = c.concession_type_id
		WHERE c.status IN ('active', 'pending')
		AND NOT EXISTS (
			SELECT 1 FROM actual_incomes i
			WHERE i.source_module = 'concessions'
			AND i.source_id = c.id
			AND i.source_table = 'concession_contracts'
		)
		ORDER BY c.created_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ConcessionContract
	for rows.Next() {
		var con models.ConcessionContract
		if err := rows.Scan(&con.ID, &con.ParkID, &con.ConcessionaireID, &con.ConcessionTypeID,
			&con.TypeName, &con.Fee, &con.StartDate, &con.EndDate, &con.Status, &con.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, con)
	}
	return list, rows.Err()
}

// GetPayment returns a payment joined with contract park and type name, or nil
// when absent.
func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (*models.ConcessionPayment, error) {
	const q = `SELECT p.id, p.contract_id, p.amount, p.payment_date, p.status, p.invoice_number, p.payment_type, p.finance_income_id, p.created_at,
			c.park_id, t.name
		FROM concession_payments p
		JOIN concession_contracts c ON c.id = p.contract_id
		JOIN concession_types t ON t.id = c.concession_type_id
		WHERE p.id = $1`
	var pay models.ConcessionPayment
	err := r.pool.QueryRow(ctx, q, id).Scan(&pay.ID, &pay.ContractID, &pay.Amount, &pay.PaymentDate,
		&pay.Status, &pay.InvoiceNumber, &pay.PaymentType, &pay.FinanceIncomeID, &pay.CreatedAt,
		&pay.ParkID, &pay.TypeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pay, nil
}

// UnsyncedPaidPayments returns paid payments without a ledger link, in
// creation order. A crash mid-batch leaves the remainder here for re-run.
func (r *Repository) UnsyncedPaidPayments(ctx context.Context) ([]models.ConcessionPayment, error) {
	const q = `SELECT p.id, p.contract_id, p.amount, p.payment_date, p.status, p.invoice_number, p.payment_type, p.finance_income_id, p.created_at,
			c.park_id, t.name
		FROM concession_payments p
		JOIN concession_contracts c ON c.id = p.contract_id
		JOIN concession_types t ON t.id = c.concession_type_id
		WHERE p.status = 'paid' AND p.finance_income_id IS NULL
		ORDER BY p.created_at`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ConcessionPayment
	for rows.Next() {
		var pay models.ConcessionPayment
		if err := rows.Scan(&pay.ID, &pay.ContractID, &pay.Amount, &pay.PaymentDate, &pay.Status,
			&pay.InvoiceNumber, &pay.PaymentType, &pay.FinanceIncomeID, &pay.CreatedAt,
			&pay.ParkID, &pay.TypeName); err != nil {
			return nil, err
		}
		list = append(list, pay)
	}
	return list, rows.Err()
}

// SetFinanceIncomeID writes the ledger back-reference onto a payment.
func (r *Repository) SetFinanceIncomeID(ctx context.Context, paymentID, incomeID uuid.UUID) error {
	const q = `UPDATE concession_payments SET finance_income_id = $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, incomeID, paymentID)
	return err
}
