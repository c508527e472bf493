package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/drawdown"
)

type DrawdownHTTPHandler struct {
	drawdowns *drawdown.Service
}

func NewDrawdownHTTPHandler(drawdownSvc *drawdown.Service) *DrawdownHTTPHandler {
	return &DrawdownHTTPHandler{drawdowns: drawdownSvc}
}

type CreateDrawdownRequest struct {
	SalespersonID int64           `json:"salesperson_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Notes         string          `json:"notes,omitempty"`
}

func (h *DrawdownHTTPHandler) CreateRequest(c *gin.Context) {
	var req CreateDrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	created, err := h.drawdowns.CreateRequest(c.Request.Context(), req.SalespersonID, req.Amount, req.Notes, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("drawdown request created", created))
}

func (h *DrawdownHTTPHandler) CheckEligibility(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	eligibility, err := h.drawdowns.CheckEligibility(c.Request.Context(), id, time.Now())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("eligibility checked", eligibility))
}

type ApproveDrawdownRequest struct {
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
}

func (h *DrawdownHTTPHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ApproveDrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	approved, err := h.drawdowns.Approve(c.Request.Context(), id, req.ApprovedAmount, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("drawdown request approved", approved))
}

type RejectDrawdownRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *DrawdownHTTPHandler) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RejectDrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rejected, err := h.drawdowns.Reject(c.Request.Context(), id, req.Reason, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("drawdown request rejected", rejected))
}

type PayDrawdownRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}

func (h *DrawdownHTTPHandler) ProcessPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PayDrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	paid, err := h.drawdowns.ProcessPayment(c.Request.Context(), id, req.PaymentMethod, req.ReferenceNumber, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("drawdown payment processed", paid))
}

func (h *DrawdownHTTPHandler) GetRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	found, err := h.drawdowns.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("drawdown request retrieved", found))
}

func (h *DrawdownHTTPHandler) ListBySalesperson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requests, err := h.drawdowns.FindBySalesperson(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("drawdown requests retrieved", requests))
}

func (h *DrawdownHTTPHandler) ListPending(c *gin.Context) {
	requests, err := h.drawdowns.FindByStatus(c.Request.Context(), models.DrawdownPending)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("pending drawdown requests retrieved", requests))
}
