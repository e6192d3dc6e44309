package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/growtheasy/metrics-manager/internal/dto"
	"github.com/growtheasy/metrics-manager/internal/store"
)

const defaultHistoryLimit = 10

type errResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response",
			slog.String("err", err.Error()))
	}
}

func respondError(w http.ResponseWriter, statusCode int, msg string) {
	respondJSON(w, statusCode, errResponse{
		Status: http.StatusText(statusCode),
		Error:  msg,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantId")
	if merchantID == "" {
		respondError(w, http.StatusBadRequest, "merchant id is required")
		return
	}

	snapshot, err := s.db.Metrics().GetLatestSnapshot(r.Context(), merchantID)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "no metrics computed yet")
			return
		}
		slog.Default().ErrorContext(r.Context(), "failed to get latest snapshot",
			slog.String("merchantId", merchantID),
			slog.String("err", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to load metrics")
		return
	}

	respondJSON(w, http.StatusOK, dto.ConvertSnapshotToResponse(snapshot))
}

func (s *Server) handleGetMetricsHistory(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantId")
	if merchantID == "" {
		respondError(w, http.StatusBadRequest, "merchant id is required")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	snapshots, err := s.db.Metrics().GetSnapshotHistory(r.Context(), merchantID, limit)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "failed to get snapshot history",
			slog.String("merchantId", merchantID),
			slog.String("err", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to load metrics history")
		return
	}

	out := make([]*dto.MetricsResponse, 0, len(snapshots))
	for i := range snapshots {
		out = append(out, dto.ConvertSnapshotToResponse(&snapshots[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantId")
	if merchantID == "" {
		respondError(w, http.StatusBadRequest, "merchant id is required")
		return
	}

	if _, err := s.db.Merchants().GetMerchant(r.Context(), merchantID); err != nil {
		if errors.Is(err, store.ErrMerchantNotFound) {
			respondError(w, http.StatusNotFound, "unknown merchant")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to resolve merchant")
		return
	}

	var payload dto.ShopifyOrder
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid order payload")
		return
	}

	order, err := dto.ConvertShopifyOrderToEntity(merchantID, &payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.db.Orders().UpsertOrder(r.Context(), order); err != nil {
		slog.Default().ErrorContext(r.Context(), "failed to upsert webhook order",
			slog.String("merchantId", merchantID),
			slog.Int64("orderId", order.ID),
			slog.String("err", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to store order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
