package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeMetricStore struct {
	eligible map[uuid.UUID]bool
	calls    []struct {
		placementID uuid.UUID
		day         time.Time
		metric      Metric
	}
}

func (f *fakeMetricStore) Increment(_ context.Context, placementID uuid.UUID, day time.Time, metric Metric) (bool, error) {
	f.calls = append(f.calls, struct {
		placementID uuid.UUID
		day         time.Time
		metric      Metric
	}{placementID, day, metric})
	return f.eligible[placementID], nil
}

func TestRecorderDispatchesMetrics(t *testing.T) {
	require := require.New(t)
	id := uuid.New()
	store := &fakeMetricStore{eligible: map[uuid.UUID]bool{id: true}}
	rec := NewRecorder(store, nil)

	ts := time.Date(2025, time.May, 10, 15, 42, 7, 0, time.UTC)
	require.NoError(rec.RecordImpression(context.Background(), id, ts))
	require.NoError(rec.RecordClick(context.Background(), id, ts))
	require.NoError(rec.RecordConversion(context.Background(), id, ts))

	require.Len(store.calls, 3)
	require.Equal(MetricImpressions, store.calls[0].metric)
	require.Equal(MetricClicks, store.calls[1].metric)
	require.Equal(MetricConversions, store.calls[2].metric)
	for _, call := range store.calls {
		// Timestamps collapse onto day granularity.
		require.Equal(time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC), call.day)
	}
}

func TestRecorderSilentOnIneligiblePlacement(t *testing.T) {
	require := require.New(t)
	id := uuid.New()
	store := &fakeMetricStore{eligible: map[uuid.UUID]bool{}} // inactive or expired
	rec := NewRecorder(store, nil)

	// No error: skipping an inactive placement is not a failure.
	require.NoError(rec.RecordImpression(context.Background(), id, time.Now()))
	require.Len(store.calls, 1)
}
