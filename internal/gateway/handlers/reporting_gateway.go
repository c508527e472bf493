package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contractbill-system/internal/services/reporting"
)

type ReportingHTTPHandler struct {
	reports *reporting.Service
}

func NewReportingHTTPHandler(reportingSvc *reporting.Service) *ReportingHTTPHandler {
	return &ReportingHTTPHandler{reports: reportingSvc}
}

func (h *ReportingHTTPHandler) SalespersonSummary(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.reports.SalespersonSummary(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("summary retrieved", summary))
}

func (h *ReportingHTTPHandler) RecognitionForecast(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().AddDate(1, 0, 0)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("from must be YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("to must be YYYY-MM-DD"))
			return
		}
		to = parsed
	}

	forecast, err := h.reports.RecognitionForecast(c.Request.Context(), id, from, to)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("forecast retrieved", forecast))
}
