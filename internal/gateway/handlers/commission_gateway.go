package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/ledger"
	"contractbill-system/internal/services/plan"
	"contractbill-system/internal/services/recognition"
)

// CommissionHTTPHandler serves commission plans, recognition schedules, and
// the ledger views behind them.
type CommissionHTTPHandler struct {
	plans       *plan.Service
	recognition *recognition.Service
	ledger      *ledger.Service
}

func NewCommissionHTTPHandler(planSvc *plan.Service, recognitionSvc *recognition.Service, ledgerSvc *ledger.Service) *CommissionHTTPHandler {
	return &CommissionHTTPHandler{plans: planSvc, recognition: recognitionSvc, ledger: ledgerSvc}
}

func (h *CommissionHTTPHandler) GetPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	found, err := h.plans.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("commission plan retrieved", found))
}

func (h *CommissionHTTPHandler) ListPlansBySalesperson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plans, err := h.plans.FindBySalesperson(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("commission plans retrieved", plans))
}

func (h *CommissionHTTPHandler) ConfirmPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	confirmed, err := h.plans.Confirm(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("commission plan confirmed", confirmed))
}

type ReversePlanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *CommissionHTTPHandler) ReversePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ReversePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	reversed, err := h.plans.Reverse(c.Request.Context(), id, req.Reason, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("commission plan reversed", reversed))
}

func (h *CommissionHTTPHandler) GetSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	schedule, err := h.recognition.GetSchedule(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("recognition schedule retrieved", schedule))
}

func (h *CommissionHTTPHandler) RecognizeEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	recognized, err := h.recognition.Recognize(c.Request.Context(), id, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("schedule entry recognized", recognized))
}

type RunRecognitionRequest struct {
	AsOf *string `json:"as_of,omitempty"`
}

// RunRecognition triggers the monthly sweep. The cutoff defaults to now and
// can be overridden for catch-up runs.
func (h *CommissionHTTPHandler) RunRecognition(c *gin.Context) {
	var req RunRecognitionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	asOf := time.Now()
	if req.AsOf != nil {
		parsed, err := time.Parse("2006-01-02", *req.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("as_of must be YYYY-MM-DD"))
			return
		}
		asOf = parsed
	}

	processed, err := h.recognition.RecognizeAllDue(c.Request.Context(), asOf, actorName(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse("recognition sweep completed", gin.H{"processed": processed}))
}

func (h *CommissionHTTPHandler) ListLedgerBySalesperson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.ledger.FindBySalesperson(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("ledger entries retrieved", entries))
}

func (h *CommissionHTTPHandler) ListLedgerByPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.ledger.FindByCommissionPlan(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("ledger entries retrieved", entries))
}

func (h *CommissionHTTPHandler) GetBalance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	accrued, err := h.ledger.SumByType(ctx, id, models.EntryCommissionAccrued)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	recognized, err := h.ledger.SumByType(ctx, id, models.EntryCommissionRecognized)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	paid, err := h.ledger.SumByType(ctx, id, models.EntryCommissionPaid)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	available, err := h.ledger.AvailableBalance(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("balance retrieved", gin.H{
		"salesperson_id": id,
		"accrued":        accrued,
		"recognized":     recognized,
		"paid":           paid,
		"available":      available,
	}))
}
