package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metric is one of the per-day placement counters.
type Metric string

const (
	MetricImpressions Metric = "impressions"
	MetricClicks      Metric = "clicks"
	MetricConversions Metric = "conversions"
)

// metricStore increments one counter for a (placement, day) row. The bool
// reports whether anything was recorded; inactive or out-of-window placements
// record nothing.
type metricStore interface {
	Increment(ctx context.Context, placementID uuid.UUID, day time.Time, metric Metric) (bool, error)
}

// Recorder accrues daily impression/click/conversion counters per placement.
// Counters are monotonic; there is no decrement.
type Recorder struct {
	store  metricStore
	logger *zap.Logger
}

// NewRecorder creates an analytics recorder.
func NewRecorder(store metricStore, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// RecordImpression increments the impression counter for the placement's day row.
func (r *Recorder) RecordImpression(ctx context.Context, placementID uuid.UUID, date time.Time) error {
	return r.record(ctx, placementID, date, MetricImpressions)
}

// RecordClick increments the click counter for the placement's day row.
func (r *Recorder) RecordClick(ctx context.Context, placementID uuid.UUID, date time.Time) error {
	return r.record(ctx, placementID, date, MetricClicks)
}

// RecordConversion increments the conversion counter for the placement's day row.
func (r *Recorder) RecordConversion(ctx context.Context, placementID uuid.UUID, date time.Time) error {
	return r.record(ctx, placementID, date, MetricConversions)
}

// record is a silent no-op when the placement is inactive or the date falls
// outside its window; the gate is enforced at write time by the store.
func (r *Recorder) record(ctx context.Context, placementID uuid.UUID, date time.Time, metric Metric) error {
	day := date.UTC().Truncate(24 * time.Hour)
	recorded, err := r.store.Increment(ctx, placementID, day, metric)
	if err != nil {
		return fmt.Errorf("record %s: %w", metric, err)
	}
	if !recorded {
		r.logger.Debug("analytics skipped for inactive or expired placement",
			zap.String("placement_id", placementID.String()),
			zap.String("metric", string(metric)))
	}
	return nil
}
