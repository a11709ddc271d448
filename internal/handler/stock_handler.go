package handler

import (
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Entry POST /api/v1/stock/entries
func (h *StockHandler) Entry(c *gin.Context) {
	var req service.StockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	movement, err := h.svc.Entry(c.Request.Context(), req, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, movement)
}

// Adjust POST /api/v1/stock/adjustments
func (h *StockHandler) Adjust(c *gin.Context) {
	var req service.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	movement, err := h.svc.Adjust(c.Request.Context(), req, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, movement)
}

// Movements GET /api/v1/stock/movements
func (h *StockHandler) Movements(c *gin.Context) {
	from, to, err := GetDateRange(c)
	if err != nil {
		BadRequest(c, "invalid date range: "+err.Error())
		return
	}
	page, size := GetPagination(c)
	movements, total, err := h.svc.Movements(c.Request.Context(), repository.MovementListParams{
		ItemType:     c.Query("item_type"),
		SKU:          c.Query("sku"),
		MovementType: c.Query("movement_type"),
		OriginTable:  c.Query("origin_table"),
		OriginID:     c.Query("origin_id"),
		From:         from,
		To:           to,
		Page:         page,
		Size:         size,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": movements, "total": total, "page": page, "page_size": size})
}

// Materials GET /api/v1/stock/materials
func (h *StockHandler) Materials(c *gin.Context) {
	page, size := GetPagination(c)
	materials, total, err := h.svc.Materials(c.Request.Context(), repository.MaterialListParams{
		Keyword: c.Query("q"),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": materials, "total": total, "page": page, "page_size": size})
}

// Products GET /api/v1/stock/products
func (h *StockHandler) Products(c *gin.Context) {
	page, size := GetPagination(c)
	products, total, err := h.svc.Products(c.Request.Context(), repository.ProductListParams{
		Keyword:  c.Query("q"),
		KitsOnly: c.Query("kits") == "true",
		Page:     page,
		Size:     size,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": products, "total": total, "page": page, "page_size": size})
}

// Alerts GET /api/v1/stock/alerts
func (h *StockHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": alerts})
}

// Reconcile GET /api/v1/stock/reconcile?item_type=RAW&sku=X
func (h *StockHandler) Reconcile(c *gin.Context) {
	itemType := c.Query("item_type")
	sku := c.Query("sku")
	if itemType == "" || sku == "" {
		BadRequest(c, "item_type and sku are required")
		return
	}
	result, err := h.svc.Reconcile(c.Request.Context(), itemType, sku)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, result)
}
