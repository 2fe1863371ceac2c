package placements

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/models"
)

var (
	// ErrUnknownSpace is returned when the space does not resolve.
	ErrUnknownSpace = errors.New("unknown space")
	// ErrUnknownAd is returned when the advertisement does not resolve.
	ErrUnknownAd = errors.New("unknown advertisement")
	// ErrUnknownPlacement is returned when the placement does not resolve.
	ErrUnknownPlacement = errors.New("unknown placement")
	// ErrPageTypeNotAllowed is returned when the space does not serve the page type.
	ErrPageTypeNotAllowed = errors.New("page type not allowed for space")
	// ErrSpaceCapacityExceeded is returned when the slot already carries max_ads
	// overlapping active placements.
	ErrSpaceCapacityExceeded = errors.New("space capacity exceeded")
)

// ScheduleRequest binds an ad to a space for a page scope and date window.
type ScheduleRequest struct {
	AdID      uuid.UUID
	SpaceID   uuid.UUID
	PageType  string
	PageID    *string // nil = every page of the page type
	StartDate time.Time
	EndDate   time.Time
}

// Scheduler schedules placements and enforces per-space concurrency limits.
type Scheduler struct {
	store  Store
	logger *zap.Logger
}

// NewScheduler creates a placement scheduler.
func NewScheduler(store Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{store: store, logger: logger}
}

// Schedule validates the request and inserts the placement. The capacity count
// and the insert run in one transaction holding a row lock on the space, so
// two concurrent calls cannot both pass the check.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (*models.Placement, error) {
	var placement *models.Placement
	err := s.store.InTx(ctx, func(tx Store) error {
		space, err := tx.SpaceForUpdate(ctx, req.SpaceID)
		if err != nil {
			return fmt.Errorf("load space: %w", err)
		}
		if space == nil {
			return ErrUnknownSpace
		}
		ok, err := tx.AdExists(ctx, req.AdID)
		if err != nil {
			return fmt.Errorf("check ad: %w", err)
		}
		if !ok {
			return ErrUnknownAd
		}
		if !space.AllowsPageType(req.PageType) {
			return ErrPageTypeNotAllowed
		}
		if req.EndDate.Before(req.StartDate) {
			return models.ErrInvalidDateRange
		}
		count, err := tx.CountOverlapping(ctx, req.SpaceID, req.PageType, req.PageID, req.StartDate, req.EndDate)
		if err != nil {
			return fmt.Errorf("count overlapping: %w", err)
		}
		if count >= space.MaxAds {
			return ErrSpaceCapacityExceeded
		}
		placement = &models.Placement{
			AdID:      req.AdID,
			SpaceID:   req.SpaceID,
			PageType:  req.PageType,
			PageID:    req.PageID,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			IsActive:  true,
		}
		return tx.Insert(ctx, placement)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("placement scheduled",
		zap.String("placement_id", placement.ID.String()),
		zap.String("space_id", req.SpaceID.String()),
		zap.String("page_type", req.PageType))
	return placement, nil
}

// Deactivate marks a placement inactive. Idempotent: deactivating twice is a no-op.
func (s *Scheduler) Deactivate(ctx context.Context, id uuid.UUID) error {
	found, err := s.store.SetInactive(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivate placement: %w", err)
	}
	if !found {
		return ErrUnknownPlacement
	}
	return nil
}

// ActiveForPage returns the renderable placements for a page, ranked for the
// renderer's tie-break: campaign priority descending, then earliest-scheduled
// first. The scheduler does not pick a winner among co-active placements.
func (s *Scheduler) ActiveForPage(ctx context.Context, pageType string, pageID *string, date time.Time) ([]models.RankedPlacement, error) {
	list, err := s.store.ActiveForPage(ctx, pageType, pageID, date)
	if err != nil {
		return nil, err
	}
	RankPlacements(list)
	return list, nil
}

// RankPlacements orders placements by campaign priority (descending) then by
// creation order (ascending) in place.
func RankPlacements(list []models.RankedPlacement) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CampaignPriority != list[j].CampaignPriority {
			return list[i].CampaignPriority > list[j].CampaignPriority
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
