package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Advertisement media storage modes.
const (
	StorageURL  = "url"
	StorageFile = "file"
)

var ErrInvalidAdMedia = errors.New("advertisement media: exactly one of url or media file must be set")

// AdMedia is the media source of an advertisement: an external URL or a stored
// MediaFile, discriminated by StorageType. Construct via ExternalMedia or
// StoredMedia so exactly one side is populated.
type AdMedia struct {
	StorageType string    `json:"storage_type"`
	URL         string    `json:"url,omitempty"`
	MediaFileID uuid.UUID `json:"media_file_id,omitempty"`
}

// ExternalMedia returns media backed by an external URL.
func ExternalMedia(url string) AdMedia {
	return AdMedia{StorageType: StorageURL, URL: url}
}

// StoredMedia returns media backed by a registered MediaFile.
func StoredMedia(fileID uuid.UUID) AdMedia {
	return AdMedia{StorageType: StorageFile, MediaFileID: fileID}
}

// Validate checks the tagged-union invariant.
func (m AdMedia) Validate() error {
	switch m.StorageType {
	case StorageURL:
		if m.URL == "" || m.MediaFileID != uuid.Nil {
			return ErrInvalidAdMedia
		}
	case StorageFile:
		if m.MediaFileID == uuid.Nil || m.URL != "" {
			return ErrInvalidAdMedia
		}
	default:
		return ErrInvalidAdMedia
	}
	return nil
}

// Advertisement is an ad creative owned by a campaign.
type Advertisement struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Media      AdMedia   `json:"media"`
	LinkURL    string    `json:"link_url"`
	MediaType  string    `json:"media_type"`
	Priority   int       `json:"priority"`
	Status     string    `json:"status"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
