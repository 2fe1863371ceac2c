package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCampaignValidate(t *testing.T) {
	require := require.New(t)
	c := Campaign{StartDate: day(2025, time.March, 1), EndDate: day(2025, time.March, 31)}
	require.NoError(c.Validate())

	// A single-day campaign is valid.
	c.EndDate = c.StartDate
	require.NoError(c.Validate())

	c.EndDate = day(2025, time.February, 28)
	require.ErrorIs(c.Validate(), ErrInvalidDateRange)
}

func TestValidCampaignStatus(t *testing.T) {
	require := require.New(t)
	for _, s := range []string{CampaignActive, CampaignPaused, CampaignCompleted, CampaignCancelled} {
		require.True(ValidCampaignStatus(s), s)
	}
	require.False(ValidCampaignStatus("archived"))
	require.False(ValidCampaignStatus(""))
}

func TestAdMediaValidate(t *testing.T) {
	require := require.New(t)

	require.NoError(ExternalMedia("https://cdn.example.com/banner.png").Validate())
	require.NoError(StoredMedia(uuid.New()).Validate())

	// Empty or mixed variants violate the union.
	require.ErrorIs(AdMedia{}.Validate(), ErrInvalidAdMedia)
	require.ErrorIs(AdMedia{StorageType: StorageURL}.Validate(), ErrInvalidAdMedia)
	require.ErrorIs(AdMedia{StorageType: StorageFile}.Validate(), ErrInvalidAdMedia)
	both := AdMedia{StorageType: StorageURL, URL: "https://x", MediaFileID: uuid.New()}
	require.ErrorIs(both.Validate(), ErrInvalidAdMedia)
	require.ErrorIs(AdMedia{StorageType: "inline", URL: "https://x"}.Validate(), ErrInvalidAdMedia)
}

func TestSpaceAllowsPageType(t *testing.T) {
	require := require.New(t)
	s := Space{PageTypes: []string{"home", "events"}}
	require.True(s.AllowsPageType("home"))
	require.True(s.AllowsPageType("events"))
	require.False(s.AllowsPageType("parks"))

	wildcard := Space{PageTypes: []string{PageTypeAll}}
	require.True(wildcard.AllowsPageType("anything"))

	empty := Space{}
	require.False(empty.AllowsPageType("home"))
}

func TestPlacementWithinWindow(t *testing.T) {
	require := require.New(t)
	p := Placement{StartDate: day(2025, time.March, 10), EndDate: day(2025, time.March, 20)}

	require.True(p.WithinWindow(day(2025, time.March, 10)))
	require.True(p.WithinWindow(day(2025, time.March, 15)))
	require.True(p.WithinWindow(day(2025, time.March, 20)))
	require.False(p.WithinWindow(day(2025, time.March, 9)))
	require.False(p.WithinWindow(day(2025, time.March, 21)))
}

func TestMediaTypeForMime(t *testing.T) {
	require := require.New(t)
	require.Equal(MediaTypeGif, MediaTypeForMime("image/gif"))
	require.Equal(MediaTypeVideo, MediaTypeForMime("video/mp4"))
	require.Equal(MediaTypeVideo, MediaTypeForMime("video/webm"))
	require.Equal(MediaTypeImage, MediaTypeForMime("image/png"))
	require.Equal(MediaTypeImage, MediaTypeForMime("image/jpeg"))
}
