package handler

import (
	"net/http"

	"wedding_crm_backend/internal/cards/service"
	"wedding_crm_backend/internal/cards/transport"
	"wedding_crm_backend/platform/httpkit"
	"wedding_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for Kanban cards.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new cards handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterLeadRoutes registers card routes nested under /pipeline/leads.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/cards", h.ListForLead)
	rg.PUT("/:id/cards", h.Reconcile)
}

// RegisterCardRoutes registers routes under /kanban/cards.
func (h *Handler) RegisterCardRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.PUT("/:id/team", h.ReplaceTeam)
}

func (h *Handler) ListForLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	cards, err := h.svc.ListCardsForLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": cards})
}

func (h *Handler) Reconcile(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	var req transport.ReconcileCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.ReconcileCardsForLead(c.Request.Context(), leadID, req.Desired())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Get(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.GetKanbanCard(c.Request.Context(), cardID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ReplaceTeam(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	var req transport.ReplaceTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.ReplaceCardTeam(c.Request.Context(), cardID, req.TeamMemberIDs)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
