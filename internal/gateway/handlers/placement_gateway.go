package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/placement"
)

type PlacementHTTPHandler struct {
	placements *placement.Service
}

func NewPlacementHTTPHandler(placementSvc *placement.Service) *PlacementHTTPHandler {
	return &PlacementHTTPHandler{placements: placementSvc}
}

type PlacementRequest struct {
	SalespersonID int64  `json:"salesperson_id" binding:"required"`
	ClientID      int64  `json:"client_id" binding:"required"`
	ContractorID  int64  `json:"contractor_id" binding:"required"`
	PlacementType string `json:"placement_type" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       *string `json:"end_date,omitempty"`

	HoursPerWeek decimal.Decimal `json:"hours_per_week"`
	WeeksPerYear *int            `json:"weeks_per_year,omitempty"`
	PayType      string          `json:"pay_type,omitempty"`
	AnnualSalary decimal.Decimal `json:"annual_salary"`
	BillRate     decimal.Decimal `json:"bill_rate"`

	AdminPercentage     *decimal.Decimal `json:"admin_percentage,omitempty"`
	InsurancePercentage *decimal.Decimal `json:"insurance_percentage,omitempty"`
	FixedCosts          decimal.Decimal  `json:"fixed_costs"`

	PlacementFee            decimal.Decimal `json:"placement_fee"`
	FeeType                 string          `json:"fee_type,omitempty"`
	CandidateSalary         decimal.Decimal `json:"candidate_salary"`
	RecognitionPeriodMonths *int            `json:"recognition_period_months,omitempty"`
}

func (r *PlacementRequest) toInput(c *gin.Context) (placement.CreateInput, bool) {
	startDate, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("start_date must be YYYY-MM-DD"))
		return placement.CreateInput{}, false
	}

	var endDate *time.Time
	if r.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *r.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("end_date must be YYYY-MM-DD"))
			return placement.CreateInput{}, false
		}
		endDate = &parsed
	}

	return placement.CreateInput{
		SalespersonID:           r.SalespersonID,
		ClientID:                r.ClientID,
		ContractorID:            r.ContractorID,
		PlacementType:           models.PlacementType(r.PlacementType),
		StartDate:               startDate,
		EndDate:                 endDate,
		HoursPerWeek:            r.HoursPerWeek,
		WeeksPerYear:            r.WeeksPerYear,
		PayType:                 models.PayType(r.PayType),
		AnnualSalary:            r.AnnualSalary,
		BillRate:                r.BillRate,
		AdminPercentage:         r.AdminPercentage,
		InsurancePercentage:     r.InsurancePercentage,
		FixedCosts:              r.FixedCosts,
		PlacementFee:            r.PlacementFee,
		FeeType:                 models.FeeType(r.FeeType),
		CandidateSalary:         r.CandidateSalary,
		RecognitionPeriodMonths: r.RecognitionPeriodMonths,
	}, true
}

func (h *PlacementHTTPHandler) CreatePlacement(c *gin.Context) {
	var req PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input, ok := req.toInput(c)
	if !ok {
		return
	}

	created, err := h.placements.Create(c.Request.Context(), input, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("placement created", created))
}

func (h *PlacementHTTPHandler) GetPlacement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	found, err := h.placements.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("placement retrieved", found))
}

func (h *PlacementHTTPHandler) UpdatePlacement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}

	updated, err := h.placements.UpdateTerms(c.Request.Context(), id, input, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("placement updated", updated))
}

func (h *PlacementHTTPHandler) ListBySalesperson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	placements, err := h.placements.FindBySalesperson(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("placements retrieved", placements))
}

func (h *PlacementHTTPHandler) ListByClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	placements, err := h.placements.FindByClient(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("placements retrieved", placements))
}
