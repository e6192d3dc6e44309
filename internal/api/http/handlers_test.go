package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/growtheasy/metrics-manager/internal/dependency"
	"github.com/growtheasy/metrics-manager/internal/entity"
	"github.com/growtheasy/metrics-manager/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	snapshot  *entity.MetricsSnapshot
	history   []entity.MetricsSnapshot
	merchants map[string]*entity.Merchant
	upserted  []*entity.Order
	storeErr  error
}

func (f *fakeRepo) Orders() dependency.Orders       { return f }
func (f *fakeRepo) Metrics() dependency.Metrics     { return f }
func (f *fakeRepo) Merchants() dependency.Merchants { return f }
func (f *fakeRepo) Close()                          {}

func (f *fakeRepo) UpsertOrder(ctx context.Context, order *entity.Order) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.upserted = append(f.upserted, order)
	return nil
}

func (f *fakeRepo) GetOrdersByMerchant(ctx context.Context, merchantID string, since time.Time, limit int) ([]entity.Order, error) {
	return nil, nil
}

func (f *fakeRepo) AddSnapshot(ctx context.Context, snapshot *entity.MetricsSnapshot) error {
	return nil
}

func (f *fakeRepo) GetLatestSnapshot(ctx context.Context, merchantID string) (*entity.MetricsSnapshot, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	if f.snapshot == nil || f.snapshot.MerchantID != merchantID {
		return nil, store.ErrSnapshotNotFound
	}
	return f.snapshot, nil
}

func (f *fakeRepo) GetSnapshotHistory(ctx context.Context, merchantID string, limit int) ([]entity.MetricsSnapshot, error) {
	if limit > len(f.history) {
		limit = len(f.history)
	}
	return f.history[:limit], nil
}

func (f *fakeRepo) ListActive(ctx context.Context) ([]entity.Merchant, error) {
	return nil, nil
}

func (f *fakeRepo) GetMerchant(ctx context.Context, id string) (*entity.Merchant, error) {
	m, ok := f.merchants[id]
	if !ok {
		return nil, store.ErrMerchantNotFound
	}
	return m, nil
}

func newTestServer(repo *fakeRepo) http.Handler {
	s := New(&Config{Port: "8081", Address: "localhost"}, repo)
	return s.router()
}

func testSnapshot(merchantID string) *entity.MetricsSnapshot {
	return &entity.MetricsSnapshot{
		ID:         "snap-1",
		MerchantID: merchantID,
		ComputedAt: time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC),
		Revenue: entity.RevenueMetrics{
			Total: decimal.NewFromInt(150),
			Trend: "+50%",
			History: []entity.DailyRevenue{
				{Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(100)},
				{Date: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), Value: decimal.NewFromInt(50)},
			},
		},
		Acquisition: entity.AcquisitionMetrics{TopChannel: ""},
		HealthScore: 65,
		Insight:     "Revenue £150.00 (+50%).",
		Connections: entity.ConnectionStatus{Shopify: true},
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMetrics(t *testing.T) {
	h := newTestServer(&fakeRepo{snapshot: testSnapshot("m1")})

	req := httptest.NewRequest(http.MethodGet, "/api/merchants/m1/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "m1", resp["merchant_id"])
	assert.Equal(t, float64(65), resp["health_score"])

	revenue := resp["revenue"].(map[string]any)
	assert.Equal(t, "+50%", revenue["trend"])
	history := revenue["history"].(map[string]any)
	assert.Equal(t, []any{"2026-05-01", "2026-05-02"}, history["labels"])

	// empty channel renders as a placeholder
	acquisition := resp["acquisition"].(map[string]any)
	assert.Equal(t, "—", acquisition["top_channel"])

	shopify := resp["shopify"].(map[string]any)
	assert.Equal(t, true, shopify["connected"])
}

func TestGetMetricsNotFound(t *testing.T) {
	h := newTestServer(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/merchants/m1/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMetricsStoreError(t *testing.T) {
	h := newTestServer(&fakeRepo{storeErr: fmt.Errorf("db down")})

	req := httptest.NewRequest(http.MethodGet, "/api/merchants/m1/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetMetricsHistory(t *testing.T) {
	repo := &fakeRepo{
		history: []entity.MetricsSnapshot{*testSnapshot("m1"), *testSnapshot("m1")},
	}
	h := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/merchants/m1/metrics/history?limit=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 1)
}

func TestGetMetricsHistoryBadLimit(t *testing.T) {
	h := newTestServer(&fakeRepo{})

	for _, limit := range []string{"0", "101", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/merchants/m1/metrics/history?limit="+limit, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestOrderWebhook(t *testing.T) {
	repo := &fakeRepo{
		merchants: map[string]*entity.Merchant{"m1": {ID: "m1"}},
	}
	h := newTestServer(repo)

	body := `{
		"id": 450789469,
		"total_price": "199.65",
		"created_at": "2026-05-01T12:00:00Z",
		"financial_status": "paid",
		"source_name": "web",
		"customer": {"id": 207119551}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/merchants/m1/webhooks/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, int64(450789469), repo.upserted[0].ID)
	assert.Equal(t, "m1", repo.upserted[0].MerchantID)
}

func TestOrderWebhookUnknownMerchant(t *testing.T) {
	h := newTestServer(&fakeRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/merchants/nope/webhooks/orders", bytes.NewBufferString(`{"id": 1}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderWebhookInvalidPayload(t *testing.T) {
	repo := &fakeRepo{
		merchants: map[string]*entity.Merchant{"m1": {ID: "m1"}},
	}
	h := newTestServer(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/merchants/m1/webhooks/orders", bytes.NewBufferString(`not json`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
