package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"battery-payback/internal/analysis"
	"battery-payback/internal/api/models"
	"battery-payback/internal/profile"
	"battery-payback/internal/sweep"
)

// AssumptionsHandler serves the configured constants
type AssumptionsHandler struct {
	runner *sweep.Runner
}

func NewAssumptionsHandler(runner *sweep.Runner) *AssumptionsHandler {
	return &AssumptionsHandler{runner: runner}
}

// Get handles GET /api/v1/assumptions
func (h *AssumptionsHandler) Get(c *gin.Context) {
	gen := h.runner.Generator()
	prices := gen.Prices()
	hours, err := profile.Build(prices, make([]float64, len(prices)), nil)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AssumptionsResponse{
		Assumptions:    sweep.Assumptions(h.runner.Config()),
		PricePotential: analysis.ComputePotential(hours),
	})
}
