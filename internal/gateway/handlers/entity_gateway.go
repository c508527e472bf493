package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/entity"
)

type EntityHTTPHandler struct {
	entities *entity.Service
}

func NewEntityHTTPHandler(entitySvc *entity.Service) *EntityHTTPHandler {
	return &EntityHTTPHandler{entities: entitySvc}
}

type CreateSalespersonRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (h *EntityHTTPHandler) CreateSalesperson(c *gin.Context) {
	var req CreateSalespersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	created, err := h.entities.CreateSalesperson(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("salesperson created", created))
}

func (h *EntityHTTPHandler) GetSalesperson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	found, err := h.entities.GetSalesperson(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("salesperson retrieved", found))
}

func (h *EntityHTTPHandler) ListSalespeople(c *gin.Context) {
	salespeople, err := h.entities.ListSalespeople(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("salespeople retrieved", salespeople))
}

func (h *EntityHTTPHandler) DeactivateSalesperson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.entities.DeactivateSalesperson(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("salesperson deactivated", nil))
}

type CreateClientRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

func (h *EntityHTTPHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	created, err := h.entities.CreateClient(c.Request.Context(), entity.ClientInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("client created", created))
}

func (h *EntityHTTPHandler) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	found, err := h.entities.GetClient(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("client retrieved", found))
}

func (h *EntityHTTPHandler) ListClients(c *gin.Context) {
	clients, err := h.entities.ListClients(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("clients retrieved", clients))
}

type CreateContractorRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Type  string `json:"type" binding:"required"`
}

func (h *EntityHTTPHandler) CreateContractor(c *gin.Context) {
	var req CreateContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	created, err := h.entities.CreateContractor(c.Request.Context(), entity.ContractorInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Type:  models.ContractorType(req.Type),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("contractor created", created))
}

func (h *EntityHTTPHandler) GetContractor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	found, err := h.entities.GetContractor(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("contractor retrieved", found))
}

func (h *EntityHTTPHandler) ListContractors(c *gin.Context) {
	contractors, err := h.entities.ListContractors(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("contractors retrieved", contractors))
}
