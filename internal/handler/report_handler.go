package handler

import (
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Create POST /api/v1/orders/:id/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	report, warnings, err := h.svc.Create(c.Request.Context(), c.Param("id"), req, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, gin.H{"report": report, "warnings": warnings})
}

// ListByOrder GET /api/v1/orders/:id/reports
func (h *ReportHandler) ListByOrder(c *gin.Context) {
	reports, err := h.svc.ListByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": reports})
}

// Delete DELETE /api/v1/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetActor(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// Stats GET /api/v1/reports/stats?from=...&to=...
// Defaults to the last 30 days when no range is given.
func (h *ReportHandler) Stats(c *gin.Context) {
	from, to, err := GetDateRange(c)
	if err != nil {
		BadRequest(c, "invalid date range: "+err.Error())
		return
	}
	now := time.Now()
	if to == nil {
		to = &now
	}
	if from == nil {
		start := to.AddDate(0, 0, -30)
		from = &start
	}
	stats, err := h.svc.Stats(c.Request.Context(), *from, *to)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, stats)
}
