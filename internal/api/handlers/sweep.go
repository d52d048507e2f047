package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-payback/internal/analysis"
	"battery-payback/internal/api/models"
	"battery-payback/internal/api/store"
	"battery-payback/internal/config"
	"battery-payback/internal/logger"
	"battery-payback/internal/metrics"
	"battery-payback/internal/report"
	"battery-payback/internal/sweep"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SweepHandler runs sweeps and serves stored results
type SweepHandler struct {
	cfg   *config.Config
	store *store.Store
	log   logger.Logger
	rec   *metrics.Recorder
}

// NewSweepHandler creates a new sweep handler. Every request runs against a
// copy of cfg with the request's axes applied.
func NewSweepHandler(cfg *config.Config, st *store.Store, log logger.Logger, rec *metrics.Recorder) *SweepHandler {
	return &SweepHandler{cfg: cfg, store: st, log: logger.OrNop(log), rec: rec}
}

// Run handles POST /api/v1/sweep
func (h *SweepHandler) Run(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	cfg := *h.cfg
	if len(req.BatterySizesKWh) > 0 {
		cfg.Sweep.BatterySizesKWh = req.BatterySizesKWh
	}
	if len(req.SolarSizesKW) > 0 {
		cfg.Sweep.SolarSizesKW = req.SolarSizesKW
	}
	if len(req.AnnualConsumptionsKWh) > 0 {
		cfg.Sweep.AnnualConsumptionsKWh = req.AnnualConsumptionsKWh
	}
	if req.Seed != nil {
		cfg.Profile.Seed = *req.Seed
	}

	runner, err := sweep.NewRunner(&cfg, h.log, h.rec)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}
	res, err := runner.Run(c.Request.Context())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	entry := h.store.Put(res)
	h.log.Infof("SweepHandler: stored sweep %s (%d with solar, %d without, %d failures)",
		entry.ID, len(res.WithSolar), len(res.WithoutSolar), len(res.Failures))
	c.JSON(http.StatusCreated, newSweepResponse(entry))
}

// Get handles GET /api/v1/sweep/:id
func (h *SweepHandler) Get(c *gin.Context) {
	entry, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSweepResponse(entry))
}

// Workbook handles GET /api/v1/sweep/:id/workbook
func (h *SweepHandler) Workbook(c *gin.Context) {
	entry, ok := h.lookup(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteTo(&buf, entry.Result); err != nil {
		h.log.Errorf("SweepHandler: workbook for %s: %v", entry.ID, err)
		abortWithError(c, http.StatusInternalServerError, "REPORT_ERROR", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="payback-%s.xlsx"`, entry.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *SweepHandler) lookup(c *gin.Context) (*store.Entry, bool) {
	id := c.Param("id")
	entry, ok := h.store.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("sweep %q not found or expired", id))
		return nil, false
	}
	return entry, true
}

func newSweepResponse(e *store.Entry) models.SweepResponse {
	resp := models.SweepResponse{
		ID:           e.ID,
		Status:       "completed",
		CreatedAt:    e.CreatedAt,
		WithSolar:    models.NewScenarioRows(e.Result.WithSolar),
		WithoutSolar: models.NewScenarioRows(e.Result.WithoutSolar),
		Failures:     e.Result.Failures,
	}
	if !e.ExpiresAt.IsZero() {
		exp := e.ExpiresAt
		resp.ExpiresAt = &exp
	}
	if best, ok := analysis.Best(e.Result.WithSolar); ok {
		row := models.NewScenarioRow(best)
		resp.BestWithSolar = &row
	}
	if best, ok := analysis.Best(e.Result.WithoutSolar); ok {
		row := models.NewScenarioRow(best)
		resp.BestWithoutSolar = &row
	}
	return resp
}
