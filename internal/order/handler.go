package order

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/statistic", h.Statistic)
	rg.GET("/all", h.ListAll)
	rg.GET("/:id", h.Detail)
	rg.GET("/:id/invoice", h.Invoice)
	rg.GET("/:id/invoice/send-email", h.SendInvoice)
	rg.POST("/:id/pay", h.Pay)
	rg.POST("/:id/ship/status", h.UpdateDeliveryStatus)
	rg.POST("/:id/cancel", h.Cancel)
	rg.PUT("/:id/ship", h.AssignShipper)
	rg.DELETE("/:id", h.Delete)
}

// orderID validates the path parameter; a malformed id is a client
// error, never a store round-trip.
func orderID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return "", false
	}
	return id, true
}

// respondError maps the error taxonomy onto HTTP statuses. Business
// rejections are 409, never a server fault; internals stay generic.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, ErrOrderCanceled),
		errors.Is(err, ErrOrderCompleted),
		errors.Is(err, ErrInvalidDeliveryStatus):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, ErrDispatchFailed):
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
	default:
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func parseFilter(c *gin.Context) *SearchFilter {
	filter := &SearchFilter{
		Search: c.Query("q"),
		Status: OrderStatus(c.Query("status")),
	}

	if from := parseDate(c.Query("from")); from != nil {
		filter.DateFrom = from
	}
	if to := parseDate(c.Query("to")); to != nil {
		filter.DateTo = to
	}

	return filter
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func parseInt32(v string, fallback int32) int32 {
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	return int32(n)
}

func (h *Handler) List(c *gin.Context) {
	filter := parseFilter(c)
	sort := &SortInput{
		Field:     SortField(c.Query("_sort")),
		Direction: c.Query("_order"),
	}
	limit := parseInt32(c.Query("_limit"), 20)
	page := parseInt32(c.Query("_page"), 1)

	result, err := h.svc.List(c.Request.Context(), filter, sort, limit, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToPageResponse(result))
}

func (h *Handler) ListAll(c *gin.Context) {
	orders, err := h.svc.All(c.Request.Context(), parseFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		data = append(data, ToOrderResponse(o))
	}

	c.JSON(http.StatusOK, data)
}

func (h *Handler) Statistic(c *gin.Context) {
	stat, err := h.svc.Statistic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stat)
}

func (h *Handler) Detail(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToOrderResponse(o))
}

func (h *Handler) Invoice(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, pdf, err := h.svc.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "invoice-"+o.Code+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) SendInvoice(c *gin.Context) {
	defer func() {
		middleware.RecordOrderOperation("send_invoice", c.Writer.Status() < 300)
	}()

	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.svc.SendInvoice(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invoice email sent"})
}

func (h *Handler) Pay(c *gin.Context) {
	defer func() {
		middleware.RecordOrderOperation("pay", c.Writer.Status() < 300)
	}()

	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Pay(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToOrderResponse(o))
}

func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	defer func() {
		middleware.RecordOrderOperation("set_delivery_status", c.Writer.Status() < 300)
	}()

	id, ok := orderID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	o, err := h.svc.SetDeliveryStatus(c.Request.Context(), id, DeliveryStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToOrderResponse(o))
}

func (h *Handler) Cancel(c *gin.Context) {
	defer func() {
		middleware.RecordOrderOperation("cancel", c.Writer.Status() < 300)
	}()

	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToOrderResponse(o))
}

func (h *Handler) AssignShipper(c *gin.Context) {
	defer func() {
		middleware.RecordOrderOperation("assign_shipper", c.Writer.Status() < 300)
	}()

	id, ok := orderID(c)
	if !ok {
		return
	}

	var req struct {
		ShipperID string `json:"shipperId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	o, err := h.svc.AssignShipper(c.Request.Context(), id, req.ShipperID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToOrderResponse(o))
}

func (h *Handler) Delete(c *gin.Context) {
	defer func() {
		middleware.RecordOrderOperation("delete", c.Writer.Status() < 300)
	}()

	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToOrderResponse(o))
}
