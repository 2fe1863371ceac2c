package models

import (
	"time"

	"github.com/google/uuid"
)

// Placement schedules one advertisement into one space for a date window and
// page scope. PageID nil means every page of the page type.
type Placement struct {
	ID          uuid.UUID `json:"id"`
	AdID        uuid.UUID `json:"ad_id"`
	SpaceID     uuid.UUID `json:"space_id"`
	PageType    string    `json:"page_type"`
	PageID      *string   `json:"page_id,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// WithinWindow reports whether the date falls inside the placement's window.
func (p *Placement) WithinWindow(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// RankedPlacement carries the ad and campaign fields a renderer needs to order
// co-active placements: campaign priority descending, then creation order.
type RankedPlacement struct {
	Placement
	AdTitle          string    `json:"ad_title"`
	LinkURL          string    `json:"link_url"`
	MediaURL         string    `json:"media_url"`
	MediaType        string    `json:"media_type"`
	SpaceKey         string    `json:"space_key"`
	CampaignPriority int       `json:"campaign_priority"`
	CampaignID       uuid.UUID `json:"campaign_id"`
}
