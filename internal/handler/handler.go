package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/repository"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	Order  *OrderHandler
	Report *ReportHandler
	Kit    *KitHandler
	Stock  *StockHandler
}

func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Order:  NewOrderHandler(svc.Order, svc.Requirement),
		Report: NewReportHandler(svc.Report),
		Kit:    NewKitHandler(svc.Kit),
		Stock:  NewStockHandler(svc.Stock),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError maps a service error onto the envelope. Validation and
// not-found problems are the caller's fault; transition rule violations
// get a conflict with the current state in the message; everything else
// is a server error.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrMissingScrapReason),
		errors.Is(err, service.ErrNoFieldsToUpdate),
		errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrComponentNotFound):
		BadRequest(c, err.Error())
	case service.IsInvalidTransition(err):
		Conflict(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetActor reads the authenticated principal the JWT middleware stored
// on the context.
func GetActor(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if email, ok := c.Get("user_email"); ok {
		actor.Email, _ = email.(string)
	}
	if name, ok := c.Get("user_name"); ok {
		actor.Name, _ = name.(string)
	}
	return actor
}

// GetDateRange reads optional from/to query parameters, accepting a
// full RFC 3339 timestamp or a bare date.
func GetDateRange(c *gin.Context) (from, to *time.Time, err error) {
	parse := func(value string) (*time.Time, error) {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	if v := c.Query("from"); v != "" {
		if from, err = parse(v); err != nil {
			return nil, nil, err
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = parse(v); err != nil {
			return nil, nil, err
		}
	}
	return from, to, nil
}

// GetPagination reads page/page_size query parameters.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
