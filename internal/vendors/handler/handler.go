package handler

import (
	"net/http"

	"wedding_crm_backend/internal/vendors/service"
	"wedding_crm_backend/internal/vendors/transport"
	"wedding_crm_backend/platform/httpkit"
	"wedding_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for vendor matching.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new vendors handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers vendor routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/matches", h.Match)
	rg.GET("/:id", h.GetByID)
}

// RegisterLeadRoutes registers the per-lead matching route on the pipeline group.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/vendor-matches", h.MatchForLead)
}

func (h *Handler) Match(c *gin.Context) {
	var req transport.MatchVendorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	items, err := h.svc.FindMatchingVendors(c.Request.Context(), req.Min, req.Max, req.ServiceType)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.MatchVendorsResponse{BudgetMin: req.Min, BudgetMax: req.Max, Items: items})
}

func (h *Handler) MatchForLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	var req transport.LeadMatchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.MatchForLead(c.Request.Context(), leadID, req.ServiceType, req.AnyService)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.GetVendor(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
