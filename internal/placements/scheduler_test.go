package placements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parquesmx/backend/internal/models"
)

type fakeStore struct {
	spaces     map[uuid.UUID]*models.Space
	ads        map[uuid.UUID]bool
	placements []*models.Placement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		spaces: make(map[uuid.UUID]*models.Space),
		ads:    make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) InTx(_ context.Context, fn func(Store) error) error { return fn(f) }

func (f *fakeStore) SpaceForUpdate(_ context.Context, id uuid.UUID) (*models.Space, error) {
	return f.spaces[id], nil
}

func (f *fakeStore) AdExists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.ads[id], nil
}

func (f *fakeStore) CountOverlapping(_ context.Context, spaceID uuid.UUID, pageType string, pageID *string, start, end time.Time) (int, error) {
	n := 0
	for _, p := range f.placements {
		if !p.IsActive || p.SpaceID != spaceID || p.PageType != pageType {
			continue
		}
		if (p.PageID == nil) != (pageID == nil) {
			continue
		}
		if p.PageID != nil && pageID != nil && *p.PageID != *pageID {
			continue
		}
		if p.StartDate.After(end) || p.EndDate.Before(start) {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeStore) Insert(_ context.Context, p *models.Placement) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.placements = append(f.placements, p)
	return nil
}

func (f *fakeStore) SetInactive(_ context.Context, id uuid.UUID) (bool, error) {
	for _, p := range f.placements {
		if p.ID == id {
			p.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Placement, error) {
	for _, p := range f.placements {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrUnknownPlacement
}

func (f *fakeStore) ActiveForPage(_ context.Context, _ string, _ *string, _ time.Time) ([]models.RankedPlacement, error) {
	return nil, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(store *fakeStore, maxAds int, pageTypes ...string) (spaceID, adID uuid.UUID) {
	spaceID = uuid.New()
	adID = uuid.New()
	store.spaces[spaceID] = &models.Space{
		ID: spaceID, SpaceKey: "sidebar-top", MaxAds: maxAds, PageTypes: pageTypes,
	}
	store.ads[adID] = true
	return spaceID, adID
}

func TestScheduleEnforcesCapacity(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 2, "home")
	s := NewScheduler(store, nil)

	req := ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "home",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 31),
	}
	_, err := s.Schedule(context.Background(), req)
	require.NoError(err)
	_, err = s.Schedule(context.Background(), req)
	require.NoError(err)

	// Third overlapping placement exceeds max_ads = 2.
	_, err = s.Schedule(context.Background(), req)
	require.ErrorIs(err, ErrSpaceCapacityExceeded)
	require.Len(store.placements, 2)

	// A disjoint window is still allowed.
	req.StartDate = date(2025, time.April, 1)
	req.EndDate = date(2025, time.April, 30)
	_, err = s.Schedule(context.Background(), req)
	require.NoError(err)
}

func TestScheduleCapacityIsPerPageScope(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 1, "park")
	s := NewScheduler(store, nil)

	pageA, pageB := "park-123", "park-456"
	req := ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "park", PageID: &pageA,
		StartDate: date(2025, time.June, 1), EndDate: date(2025, time.June, 30),
	}
	_, err := s.Schedule(context.Background(), req)
	require.NoError(err)

	// Same slot on another page is an independent capacity bucket.
	req.PageID = &pageB
	_, err = s.Schedule(context.Background(), req)
	require.NoError(err)

	req.PageID = &pageA
	_, err = s.Schedule(context.Background(), req)
	require.ErrorIs(err, ErrSpaceCapacityExceeded)
}

func TestScheduleRejectsDisallowedPageType(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 3, "home", "event")
	s := NewScheduler(store, nil)

	_, err := s.Schedule(context.Background(), ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "park",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 2),
	})
	require.ErrorIs(err, ErrPageTypeNotAllowed)
	require.Empty(store.placements)
}

func TestScheduleAllowsWildcardPageType(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 1, models.PageTypeAll)
	s := NewScheduler(store, nil)

	_, err := s.Schedule(context.Background(), ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "anything",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 2),
	})
	require.NoError(err)
}

func TestScheduleValidation(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 1, "home")
	s := NewScheduler(store, nil)

	_, err := s.Schedule(context.Background(), ScheduleRequest{
		AdID: adID, SpaceID: uuid.New(), PageType: "home",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 2),
	})
	require.ErrorIs(err, ErrUnknownSpace)

	_, err = s.Schedule(context.Background(), ScheduleRequest{
		AdID: uuid.New(), SpaceID: spaceID, PageType: "home",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 2),
	})
	require.ErrorIs(err, ErrUnknownAd)

	_, err = s.Schedule(context.Background(), ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "home",
		StartDate: date(2025, time.March, 2), EndDate: date(2025, time.March, 1),
	})
	require.ErrorIs(err, models.ErrInvalidDateRange)
	require.Empty(store.placements)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 1, "home")
	s := NewScheduler(store, nil)

	p, err := s.Schedule(context.Background(), ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "home",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 2),
	})
	require.NoError(err)

	require.NoError(s.Deactivate(context.Background(), p.ID))
	require.False(store.placements[0].IsActive)

	// Second call is a no-op, not an error.
	require.NoError(s.Deactivate(context.Background(), p.ID))
	require.False(store.placements[0].IsActive)

	require.ErrorIs(s.Deactivate(context.Background(), uuid.New()), ErrUnknownPlacement)
}

func TestDeactivatedPlacementFreesCapacity(t *testing.T) {
	require := require.New(t)
	store := newFakeStore()
	spaceID, adID := seed(store, 1, "home")
	s := NewScheduler(store, nil)

	req := ScheduleRequest{
		AdID: adID, SpaceID: spaceID, PageType: "home",
		StartDate: date(2025, time.March, 1), EndDate: date(2025, time.March, 31),
	}
	p, err := s.Schedule(context.Background(), req)
	require.NoError(err)
	_, err = s.Schedule(context.Background(), req)
	require.ErrorIs(err, ErrSpaceCapacityExceeded)

	require.NoError(s.Deactivate(context.Background(), p.ID))
	_, err = s.Schedule(context.Background(), req)
	require.NoError(err)
}

func TestRankPlacements(t *testing.T) {
	require := require.New(t)
	t0 := date(2025, time.January, 1)
	mk := func(priority int, created time.Time) models.RankedPlacement {
		rp := models.RankedPlacement{CampaignPriority: priority}
		rp.CreatedAt = created
		return rp
	}
	list := []models.RankedPlacement{
		mk(1, t0.Add(2*time.Hour)),
		mk(5, t0.Add(3*time.Hour)),
		mk(5, t0.Add(1*time.Hour)),
		mk(3, t0),
	}
	RankPlacements(list)

	require.Equal(5, list[0].CampaignPriority)
	require.Equal(t0.Add(1*time.Hour), list[0].CreatedAt) // earliest wins the tie
	require.Equal(5, list[1].CampaignPriority)
	require.Equal(3, list[2].CampaignPriority)
	require.Equal(1, list[3].CampaignPriority)
}
