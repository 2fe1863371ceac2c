package models

import (
	"time"

	"github.com/google/uuid"
)

// AdAnalytics is one placement's counters for one day. Counters only grow.
type AdAnalytics struct {
	ID          uuid.UUID `json:"id"`
	PlacementID uuid.UUID `json:"placement_id"`
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
}

// AnalyticsSummary aggregates a placement's counters over its lifetime.
type AnalyticsSummary struct {
	PlacementID uuid.UUID `json:"placement_id"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Days        int       `json:"days"`
}
