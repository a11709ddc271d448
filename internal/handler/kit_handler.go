package handler

import (
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type KitHandler struct {
	svc *service.KitService
}

func NewKitHandler(svc *service.KitService) *KitHandler {
	return &KitHandler{svc: svc}
}

// Expand GET /api/v1/kits/:sku/bom
func (h *KitHandler) Expand(c *gin.Context) {
	lines, err := h.svc.Expand(c.Request.Context(), c.Param("sku"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": lines})
}

// Match POST /api/v1/kits/match
func (h *KitHandler) Match(c *gin.Context) {
	var req struct {
		Components []service.ComponentInput `json:"components" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.svc.MatchByComposition(c.Request.Context(), req.Components)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, result)
}

// Create POST /api/v1/kits
func (h *KitHandler) Create(c *gin.Context) {
	var req service.CreateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.svc.CreateKit(c.Request.Context(), req, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, result)
}

// Unmatched GET /api/v1/kits/unmatched
// External order lines still awaiting a kit binding.
func (h *KitHandler) Unmatched(c *gin.Context) {
	page, size := GetPagination(c)
	items, total, err := h.svc.ListUnmatched(c.Request.Context(), page, size)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items, "total": total, "page": page, "page_size": size})
}
