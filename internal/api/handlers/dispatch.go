package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-payback/internal/api/models"
	"battery-payback/internal/dispatch"
	"battery-payback/internal/logger"
	"battery-payback/internal/model"
	"battery-payback/internal/sweep"
)

// DispatchHandler handles single-scenario requests
type DispatchHandler struct {
	runner *sweep.Runner
	log    logger.Logger
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(runner *sweep.Runner, log logger.Logger) *DispatchHandler {
	return &DispatchHandler{runner: runner, log: logger.OrNop(log)}
}

// Run handles POST /api/v1/dispatch
func (h *DispatchHandler) Run(c *gin.Context) {
	var req models.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	mode, err := requestMode(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	sc := model.Scenario{
		BatteryKWh:           *req.BatteryKWh,
		SolarKW:              req.SolarKW,
		AnnualConsumptionKWh: req.AnnualConsumptionKWh,
	}
	h.log.Debugf("DispatchHandler: mode=%s battery=%g kWh consumption=%g kWh custom_hours=%t",
		mode, sc.BatteryKWh, sc.AnnualConsumptionKWh, req.Hours != nil)

	out, err := h.runner.RunSingle(c.Request.Context(), mode, sc, req.Hours, dispatch.Options{RecordLedger: req.IncludeLedger})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DispatchResponse{
		Mode:           mode,
		Result:         models.NewScenarioRow(out.Result),
		Savings:        out.Savings,
		FinalChargeKWh: out.Dispatch.FinalCharge,
		Ledger:         out.Dispatch.Ledger,
	})
}

func requestMode(req models.DispatchRequest) (model.Mode, error) {
	switch model.Mode(req.Mode) {
	case "":
		if req.SolarKW != nil {
			return model.ModeSolar, nil
		}
		return model.ModeNoSolar, nil
	case model.ModeSolar, model.ModeNoSolar:
		return model.Mode(req.Mode), nil
	default:
		return "", fmt.Errorf("mode must be %q or %q", model.ModeSolar, model.ModeNoSolar)
	}
}
