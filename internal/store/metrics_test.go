package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(merchantID string, computedAt time.Time) *entity.MetricsSnapshot {
	return &entity.MetricsSnapshot{
		ID:         uuid.New().String(),
		MerchantID: merchantID,
		ComputedAt: computedAt,
		Revenue: entity.RevenueMetrics{
			Total: decimal.NewFromInt(150),
			Trend: "+50%",
			History: []entity.DailyRevenue{
				{Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(100)},
				{Date: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(50)},
			},
		},
		Churn: entity.ChurnMetrics{Rate: 50, AtRisk: 1},
		Performance: entity.PerformanceMetrics{
			Ratio:         "3.3",
			LTV:           decimal.NewFromInt(75),
			ReturningLTV:  decimal.NewFromInt(100),
			OneTimeLTV:    decimal.NewFromInt(50),
			CAC:           decimal.NewFromFloat(22.5),
			AvgOrderValue: decimal.NewFromInt(50),
			RepeatRate:    50,
		},
		Acquisition: entity.AcquisitionMetrics{TopChannel: "Organic", Cost: decimal.NewFromFloat(22.5)},
		Retention: entity.RetentionMetrics{
			Rate: 50,
			Cohorts: []entity.CohortRetention{
				{CohortMonth: "2026-05", Size: 2, Retained: 1, Rate: 50.0},
			},
		},
		HealthScore: 80,
		Insight:     "Revenue £150.00 (+50%) with an average order value of £50.00.",
		Connections: entity.ConnectionStatus{Shopify: true},
	}
}

func TestSnapshotRowRoundTrip(t *testing.T) {
	in := testSnapshot("m1", time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC))

	row, err := snapshotToRow(in)
	require.NoError(t, err)

	out, err := rowToSnapshot(*row)
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.MerchantID, out.MerchantID)
	assert.True(t, in.Revenue.Total.Equal(out.Revenue.Total))
	assert.Equal(t, in.Revenue.Trend, out.Revenue.Trend)
	require.Len(t, out.Revenue.History, 2)
	assert.Equal(t, in.Revenue.History[0].Date, out.Revenue.History[0].Date)
	assert.True(t, in.Revenue.History[1].Value.Equal(out.Revenue.History[1].Value))
	assert.Equal(t, in.Retention.Cohorts, out.Retention.Cohorts)
	assert.Equal(t, in.Churn, out.Churn)
	assert.Equal(t, in.HealthScore, out.HealthScore)
	assert.Equal(t, in.Connections, out.Connections)
}

func TestMetrics_AddAndGet(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ms := db.Metrics()

	ctx := context.Background()
	insertTestMerchant(t, db, "m1")

	_, err := ms.GetLatestSnapshot(ctx, "m1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	first := testSnapshot("m1", time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC))
	err = ms.AddSnapshot(ctx, first)
	assert.NoError(t, err)

	second := testSnapshot("m1", time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC))
	second.HealthScore = 85
	err = ms.AddSnapshot(ctx, second)
	assert.NoError(t, err)

	latest, err := ms.GetLatestSnapshot(ctx, "m1")
	assert.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 85, latest.HealthScore)
	assert.Equal(t, "Organic", latest.Acquisition.TopChannel)

	history, err := ms.GetSnapshotHistory(ctx, "m1", 10)
	assert.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	history, err = ms.GetSnapshotHistory(ctx, "m1", 1)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMetrics_AddSnapshotValidation(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ms := db.Metrics()

	err := ms.AddSnapshot(context.Background(), &entity.MetricsSnapshot{MerchantID: "m1"})
	assert.Error(t, err)
}
