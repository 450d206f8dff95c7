package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billscan/internal/budget"
)

// HealthHandler serves liveness/readiness probes.
type HealthHandler struct {
	governor *budget.Governor
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(governor *budget.Governor) *HealthHandler {
	return &HealthHandler{governor: governor}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports whether the service would currently admit an analysis
// request. A budget-exhausted service is still "ready" — it answers requests,
// just with an admission denial — so the budget state is informational.
func (h *HealthHandler) Readiness(c *gin.Context) {
	adm := h.governor.CheckAdmission()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"budget": adm,
	})
}
