package models

import (
	"time"

	"github.com/google/uuid"
)

// Media types for ad creatives.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeGif   = "gif"
)

// MediaFile is an uploaded ad creative, deduplicated by content hash.
// Rows are immutable after creation apart from status.
type MediaFile struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	FileSize    int64      `json:"file_size"`
	URL         string     `json:"url"`
	S3Key       string     `json:"s3_key,omitempty"`
	MediaType   string     `json:"media_type"`
	Duration    int        `json:"duration"` // seconds, videos only
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	ContentHash string     `json:"content_hash"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MediaTypeForMime maps a MIME type onto the creative media type.
func MediaTypeForMime(mime string) string {
	switch mime {
	case "image/gif":
		return MediaTypeGif
	case "video/mp4", "video/webm":
		return MediaTypeVideo
	default:
		return MediaTypeImage
	}
}
