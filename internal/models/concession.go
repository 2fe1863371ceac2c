package models

import (
	"time"

	"github.com/google/uuid"
)

// Concession contract statuses relevant to finance sync.
const (
	ContractActive  = "active"
	ContractPending = "pending"
)

// Concession payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentLate    = "late"
)

// ConcessionType names a kind of concession (restaurant, shop, sports...).
type ConcessionType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// ConcessionContract is owned by the concessions module; the finance sync
// engine only reads it.
type ConcessionContract struct {
	ID               uuid.UUID `json:"id"`
	ParkID           uuid.UUID `json:"park_id"`
	ConcessionaireID uuid.UUID `json:"concessionaire_id"`
	ConcessionTypeID uuid.UUID `json:"concession_type_id"`
	TypeName         string    `json:"type_name,omitempty"`
	Fee              float64   `json:"fee"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConcessionPayment is owned by the concessions module. FinanceIncomeID is the
// back-reference written by the sync engine; NULL marks the payment unsynced.
type ConcessionPayment struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	Amount          float64    `json:"amount"`
	PaymentDate     time.Time  `json:"payment_date"`
	Status          string     `json:"status"`
	InvoiceNumber   string     `json:"invoice_number"`
	PaymentType     string     `json:"payment_type"`
	FinanceIncomeID *uuid.UUID `json:"finance_income_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	// Joined fields for sync (park, type name).
	ParkID   uuid.UUID `json:"park_id,omitempty"`
	TypeName string    `json:"type_name,omitempty"`
}
