package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Repository implements LedgerStore on PostgreSQL and serves the integration
// dashboard queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a finance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResolveCategory returns the category ID for a taxonomy entry, creating the
// row when missing. The unique code makes creation idempotent: a concurrent
// insert is swallowed and the winner re-read.
func (r *Repository) ResolveCategory(ctx context.Context, cat ConcessionCategory) (uuid.UUID, error) {
	const sel = `SELECT id FROM income_categories WHERE code = $1`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, sel, cat.Code()).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, err
	}
	const ins = `INSERT INTO income_categories (code, name)
		VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING
		RETURNING id`
	err = r.pool.QueryRow(ctx, ins, cat.Code(), cat.Name()).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race; the row exists now.
		err = r.pool.QueryRow(ctx, sel, cat.Code()).Scan(&id)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("create category %s: %w", cat.Code(), err)
	}
	return id, nil
}

// InsertIncome inserts a ledger income row.
func (r *Repository) InsertIncome(ctx context.Context, inc *models.LedgerIncome) error {
	const q = `INSERT INTO actual_incomes (category_id, amount, date, month, year, concept, description, park_id, source_module, source_id, source_table)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, integration_status, created_at`
	return r.pool.QueryRow(ctx, q, inc.CategoryID, inc.Amount, inc.Date, inc.Month, inc.Year,
		inc.Concept, inc.Description, inc.ParkID, inc.SourceModule, inc.SourceID, inc.SourceTable).
		Scan(&inc.ID, &inc.IntegrationStatus, &inc.CreatedAt)
}

// FindBySource returns the income row under the idempotency key, or nil.
func (r *Repository) FindBySource(ctx context.Context, module string, sourceID uuid.UUID, table string) (*models.LedgerIncome, error) {
	const q = `SELECT id, category_id, amount, date, month, year, concept, description, park_id, COALESCE(source_module,''), source_id, COALESCE(source_table,''), integration_status, created_at
		FROM actual_incomes WHERE source_module = $1 AND source_id = $2 AND source_table = $3`
	var inc models.LedgerIncome
	err := r.pool.QueryRow(ctx, q, module, sourceID, table).Scan(&inc.ID, &inc.CategoryID, &inc.Amount,
		&inc.Date, &inc.Month, &inc.Year, &inc.Concept, &inc.Description, &inc.ParkID,
		&inc.SourceModule, &inc.SourceID, &inc.SourceTable, &inc.IntegrationStatus, &inc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

// UpdateBySource patches the income row under the idempotency key.
func (r *Repository) UpdateBySource(ctx context.Context, module string, sourceID uuid.UUID, table string, patch IncomePatch) error {
	const q = `UPDATE actual_incomes SET
			amount = COALESCE($4::numeric, amount),
			date = COALESCE($5::date, date),
			month = COALESCE(EXTRACT(MONTH FROM $5::date)::int, month),
			year = COALESCE(EXTRACT(YEAR FROM $5::date)::int, year),
			description = CASE WHEN $6::text IS NULL THEN description ELSE description || ' / ' || $6 END,
			concept = COALESCE('Pago de concesión ' || $7::text, concept)
		WHERE source_module = $1 AND source_id = $2 AND source_table = $3`
	_, err := r.pool.Exec(ctx, q, module, sourceID, table,
		patch.Amount, patch.Date, patch.PaymentMethod, patch.InvoiceNumber)
	return err
}

// DeleteBySource deletes the income row under the idempotency key; the bool
// reports whether a row existed.
func (r *Repository) DeleteBySource(ctx context.Context, module string, sourceID uuid.UUID, table string) (bool, error) {
	const q = `DELETE FROM actual_incomes WHERE source_module = $1 AND source_id = $2 AND source_table = $3`
	tag, err := r.pool.Exec(ctx, q, module, sourceID, table)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ParkIncome is one park's synchronized concession income.
type ParkIncome struct {
	ParkID uuid.UUID `json:"park_id"`
	Total  float64   `json:"total"`
}

// TypeIncome is one concession type's synchronized income.
type TypeIncome struct {
	TypeName string  `json:"type_name"`
	Total    float64 `json:"total"`
}

// DashboardStats aggregates the concession/finance integration state.
type DashboardStats struct {
	TotalPayments   int          `json:"total_payments"`
	PaidPayments    int          `json:"paid_payments"`
	PendingPayments int          `json:"pending_payments"`
	LatePayments    int          `json:"late_payments"`
	SyncedPayments  int          `json:"synced_payments"`
	SyncCoverage    float64      `json:"sync_coverage"` // synced / paid, 0..1
	IncomeByPark    []ParkIncome `json:"income_by_park"`
	IncomeByType    []TypeIncome `json:"income_by_type"`
}

// Dashboard computes aggregate stats for the integration dashboard.
func (r *Repository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	const counts = `SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'late'),
			COUNT(*) FILTER (WHERE status = 'paid' AND finance_income_id IS NOT NULL)
		FROM concession_payments`
	if err := r.pool.QueryRow(ctx, counts).Scan(&stats.TotalPayments, &stats.PaidPayments,
		&stats.PendingPayments, &stats.LatePayments, &stats.SyncedPayments); err != nil {
		return nil, fmt.Errorf("payment counts: %w", err)
	}
	if stats.PaidPayments > 0 {
		stats.SyncCoverage = float64(stats.SyncedPayments) / float64(stats.PaidPayments)
	}

	const byPark = `SELECT c.park_id, COALESCE(SUM(p.amount), 0)
		FROM concession_payments p
		JOIN concession_contracts c ON c.id = p.contract_id
		WHERE p.status = 'paid'
		GROUP BY c.park_id ORDER BY 2 DESC`
	rows, err := r.pool.Query(ctx, byPark)
	if err != nil {
		return nil, fmt.Errorf("income by park: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pi ParkIncome
		if err := rows.Scan(&pi.ParkID, &pi.Total); err != nil {
			return nil, err
		}
		stats.IncomeByPark = append(stats.IncomeByPark, pi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const byType = `SELECT t.name, COALESCE(SUM(p.amount), 0)
		FROM concession_payments p
		JOIN concession_contracts c ON c.id = p.contract_id
		JOIN concession_types t ON t.id = c.concession_type_id
		WHERE p.status = 'paid'
		GROUP BY t.name ORDER BY 2 DESC`
	rows2, err := r.pool.Query(ctx, byType)
	if err != nil {
		return nil, fmt.Errorf("income by type: %w", err)
	}
	defer rows2.Close()
	for rows2.Next() {
		var ti TypeIncome
		if err := rows2.Scan(&ti.TypeName, &ti.Total); err != nil {
			return nil, err
		}
		stats.IncomeByType = append(stats.IncomeByType, ti)
	}
	return stats, rows2.Err()
}
