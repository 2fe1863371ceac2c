package models

import (
	"time"

	"github.com/google/uuid"
)

// Source identifiers used as the ledger idempotency key
// (source_module, source_id, source_table).
const (
	SourceModuleConcessions = "concessions"
	SourceTableContracts    = "concession_contracts"
	SourceTablePayments     = "concession_payments"
)

// IncomeCategory classifies ledger incomes; looked up by unique code.
type IncomeCategory struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// LedgerIncome is a row in actual_incomes, the reconciliation target of the
// concession finance sync. Payment-sourced rows are unique per
// (SourceModule, SourceID, SourceTable); contract-sourced rows fan out into
// one row per monthly installment under the contract's source triple.
type LedgerIncome struct {
	ID                uuid.UUID  `json:"id"`
	CategoryID        uuid.UUID  `json:"category_id"`
	Amount            float64    `json:"amount"`
	Date              time.Time  `json:"date"`
	Month             int        `json:"month"`
	Year              int        `json:"year"`
	Concept           string     `json:"concept"`
	Description       string     `json:"description"`
	ParkID            *uuid.UUID `json:"park_id,omitempty"`
	SourceModule      string     `json:"source_module,omitempty"`
	SourceID          *uuid.UUID `json:"source_id,omitempty"`
	SourceTable       string     `json:"source_table,omitempty"`
	IntegrationStatus string     `json:"integration_status"`
	CreatedAt         time.Time  `json:"created_at"`
}
