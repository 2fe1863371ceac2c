package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Campaign statuses.
const (
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
	CampaignCancelled = "cancelled"
)

// ErrInvalidDateRange is returned when an end date precedes a start date.
var ErrInvalidDateRange = errors.New("end date before start date")

// Campaign groups advertisements under a client, budget and date range.
// Budget is informational; placements never debit it.
type Campaign struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Client      string    `json:"client"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Budget      float64   `json:"budget"`
	Priority    int       `json:"priority"` // higher wins contention
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks campaign invariants.
func (c *Campaign) Validate() error {
	if c.EndDate.Before(c.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidCampaignStatus reports whether s is a recognized campaign status.
func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignActive, CampaignPaused, CampaignCompleted, CampaignCancelled:
		return true
	}
	return false
}
