package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battery-payback/internal/api/models"
	"battery-payback/internal/api/store"
	"battery-payback/internal/config"
	"battery-payback/internal/metrics"
	"battery-payback/internal/model"
	"battery-payback/internal/report"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Sweep.BatterySizesKWh = []float64{5, 20}
	cfg.Sweep.SolarSizesKW = []float64{5}
	cfg.Sweep.AnnualConsumptionsKWh = []float64{10000}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	r, err := NewRouter(Deps{
		Config:   cfg,
		Store:    store.New(time.Hour),
		Recorder: rec,
		Gatherer: reg,
	})
	require.NoError(t, err)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAssumptions(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/api/v1/assumptions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.AssumptionsResponse](t, w)
	assert.NotEmpty(t, resp.Assumptions)
	assert.Equal(t, model.HoursPerYear, resp.PricePotential.Count)
}

func TestDispatchEndpoint(t *testing.T) {
	r := newTestRouter(t)

	t.Run("no solar with fixed hours", func(t *testing.T) {
		hours := make(model.HourlySeries, model.HoursPerYear)
		for i := range hours {
			hours[i] = model.HourlyRecord{Hour: i + 1, Price: 0.10, Consumption: 1}
		}
		w := do(t, r, http.MethodPost, "/api/v1/dispatch", map[string]any{
			"battery_kwh":            20,
			"annual_consumption_kwh": 8760,
			"include_ledger":         true,
			"hours":                  hours,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[models.DispatchResponse](t, w)
		assert.Equal(t, model.ModeNoSolar, resp.Mode)
		assert.InDelta(t, 146.0, resp.Savings.ElectricityCostSavings, 1e-6)
		assert.InDelta(t, 439.7, resp.Savings.TotalSavings, 1e-6)
		assert.Len(t, resp.Ledger, model.HoursPerYear)
		require.NotNil(t, resp.Result.PaybackYears)
		assert.True(t, resp.Result.PaysBack)
	})

	t.Run("solar with generated hours", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/dispatch", map[string]any{
			"battery_kwh":            5,
			"solar_kw":               7,
			"annual_consumption_kwh": 15000,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[models.DispatchResponse](t, w)
		assert.Equal(t, model.ModeSolar, resp.Mode)
		assert.Equal(t, 9500.0, resp.Result.InvestmentCost)
		assert.Empty(t, resp.Ledger)
	})

	t.Run("errors", func(t *testing.T) {
		cases := []struct {
			name string
			body any
			code int
			err  string
		}{
			{"missing battery", map[string]any{"annual_consumption_kwh": 1}, http.StatusBadRequest, "INVALID_REQUEST"},
			{"bad mode", map[string]any{"battery_kwh": 5, "mode": "wind"}, http.StatusBadRequest, "INVALID_REQUEST"},
			{"solar mode without size", map[string]any{"battery_kwh": 5, "mode": "solar"}, http.StatusBadRequest, "INVALID_INPUT"},
			{"short hours", map[string]any{"battery_kwh": 5, "hours": []map[string]any{{"hour": 1, "price": 0.1, "consumption_kwh": 1}}}, http.StatusBadRequest, "INVALID_INPUT"},
			{"unknown battery", map[string]any{"battery_kwh": 6}, http.StatusUnprocessableEntity, "UNKNOWN_BATTERY_SIZE"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				w := do(t, r, http.MethodPost, "/api/v1/dispatch", tc.body)
				assert.Equal(t, tc.code, w.Code, w.Body.String())
				assert.Equal(t, tc.err, decode[models.ErrorResponse](t, w).Error.Code)
			})
		}
	})
}

func TestSweepLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/sweep", map[string]any{
		"battery_sizes_kwh": []float64{5, 20, 42},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.SweepResponse](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "completed", created.Status)
	assert.Len(t, created.WithSolar, 2)
	assert.Len(t, created.WithoutSolar, 2)
	assert.Len(t, created.Failures, 2)
	require.NotNil(t, created.ExpiresAt)

	w = do(t, r, http.MethodGet, "/api/v1/sweep/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.SweepResponse](t, w)
	assert.Equal(t, created.WithSolar, got.WithSolar)

	w = do(t, r, http.MethodGet, "/api/v1/sweep/"+created.ID+"/workbook", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), created.ID)
	book, err := report.ReadResultsFrom(w.Body)
	require.NoError(t, err)
	assert.Len(t, book.WithSolar, 2)

	w = do(t, r, http.MethodGet, "/api/v1/sweep/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/sweep/does-not-exist/workbook", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `payback_scenarios_total{mode="solar",outcome="failed"} 1`), w.Body.String())
}

func TestSweepRejectsBadRequests(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/sweep", map[string]any{"solar_sizes_kw": []float64{-5}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sweep", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoRoute(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
