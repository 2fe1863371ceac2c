package models

import (
	"time"

	"github.com/google/uuid"
)

// PageTypeAll is the wildcard allowing a space on every page type.
const PageTypeAll = "all"

// Space location types.
const (
	LocationHeader   = "header"
	LocationSidebar  = "sidebar"
	LocationFooter   = "footer"
	LocationContent  = "content"
	LocationModal    = "modal"
	LocationCarousel = "carousel"
)

// Space is a named slot in the page layout where ads may render.
type Space struct {
	ID           uuid.UUID `json:"id"`
	SpaceKey     string    `json:"space_key"`
	Name         string    `json:"name"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	LocationType string    `json:"location_type"`
	PageTypes    []string  `json:"page_types"`
	MaxAds       int       `json:"max_ads"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// AllowsPageType reports whether the space may appear on the given page type.
func (s *Space) AllowsPageType(pageType string) bool {
	for _, pt := range s.PageTypes {
		if pt == PageTypeAll || pt == pageType {
			return true
		}
	}
	return false
}
