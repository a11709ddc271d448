package handler

import (
	"strconv"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc         *service.OrderService
	requirement *service.RequirementService
}

func NewOrderHandler(svc *service.OrderService, requirement *service.RequirementService) *OrderHandler {
	return &OrderHandler{svc: svc, requirement: requirement}
}

// Create POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), req, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, order)
}

// Get GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// List GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	from, to, err := GetDateRange(c)
	if err != nil {
		BadRequest(c, "invalid date range: "+err.Error())
		return
	}
	page, size := GetPagination(c)
	orders, total, err := h.svc.List(c.Request.Context(), repository.OrderListParams{
		Status:     c.Query("status"),
		Sector:     c.Query("sector"),
		ProductSKU: c.Query("product_sku"),
		Keyword:    c.Query("q"),
		From:       from,
		To:         to,
		Page:       page,
		Size:       size,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": orders, "total": total, "page": page, "page_size": size})
}

// Start POST /api/v1/orders/:id/start
func (h *OrderHandler) Start(c *gin.Context) {
	order, warnings, err := h.svc.Start(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"order": order, "warnings": warnings})
}

// Pause POST /api/v1/orders/:id/pause
func (h *OrderHandler) Pause(c *gin.Context) {
	order, err := h.svc.Pause(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// Resume POST /api/v1/orders/:id/resume
func (h *OrderHandler) Resume(c *gin.Context) {
	order, err := h.svc.Resume(c.Request.Context(), c.Param("id"), GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// Cancel POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional
	_ = c.ShouldBindJSON(&req)
	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// Update PATCH /api/v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, order)
}

// Requirement GET /api/v1/orders/requirement?product_sku=X&qty=N
// Preview of the raw-material need before creating an order.
func (h *OrderHandler) Requirement(c *gin.Context) {
	sku := c.Query("product_sku")
	if sku == "" {
		BadRequest(c, "product_sku is required")
		return
	}
	qty, err := strconv.ParseFloat(c.Query("qty"), 64)
	if err != nil || qty <= 0 {
		BadRequest(c, "qty must be a positive number")
		return
	}
	lines, err := h.requirement.Compute(c.Request.Context(), sku, qty)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": lines})
}
