package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"contractbill-system/internal/services/settings"
)

type SettingsHTTPHandler struct {
	settings *settings.Service
}

func NewSettingsHTTPHandler(settingsSvc *settings.Service) *SettingsHTTPHandler {
	return &SettingsHTTPHandler{settings: settingsSvc}
}

func (h *SettingsHTTPHandler) GetSettings(c *gin.Context) {
	current, err := h.settings.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("policy settings retrieved", current))
}

type UpdateSettingsRequest struct {
	AdminPercentage     *decimal.Decimal `json:"admin_percentage,omitempty"`
	InsurancePercentage *decimal.Decimal `json:"insurance_percentage,omitempty"`
	LeavePercentage     *decimal.Decimal `json:"leave_percentage,omitempty"`
	StatutoryPercentage *decimal.Decimal `json:"statutory_percentage,omitempty"`
	PensionPercentage   *decimal.Decimal `json:"pension_percentage,omitempty"`
	PensionCap          *decimal.Decimal `json:"pension_cap,omitempty"`

	WeeksPerYear *int `json:"weeks_per_year,omitempty"`

	FirstContractCommission  *decimal.Decimal `json:"first_contract_commission,omitempty"`
	SecondContractCommission *decimal.Decimal `json:"second_contract_commission,omitempty"`
	ThirdContractCommission  *decimal.Decimal `json:"third_contract_commission,omitempty"`

	DrawdownMinMonth      *int `json:"drawdown_min_month,omitempty"`
	DrawdownMaxPerQuarter *int `json:"drawdown_max_per_quarter,omitempty"`
}

func (h *SettingsHTTPHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	updated, err := h.settings.Update(c.Request.Context(), settings.UpdateInput{
		AdminPercentage:          req.AdminPercentage,
		InsurancePercentage:      req.InsurancePercentage,
		LeavePercentage:          req.LeavePercentage,
		StatutoryPercentage:      req.StatutoryPercentage,
		PensionPercentage:        req.PensionPercentage,
		PensionCap:               req.PensionCap,
		WeeksPerYear:             req.WeeksPerYear,
		FirstContractCommission:  req.FirstContractCommission,
		SecondContractCommission: req.SecondContractCommission,
		ThirdContractCommission:  req.ThirdContractCommission,
		DrawdownMinMonth:         req.DrawdownMinMonth,
		DrawdownMaxPerQuarter:    req.DrawdownMaxPerQuarter,
	}, actorName(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("policy settings updated", updated))
}
