package handler

import (
	"net/http"
	"strconv"

	"wedding_crm_backend/internal/notification/inapp"
	"wedding_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HTTPHandler struct {
	svc *inapp.Service
}

func NewHTTPHandler(svc *inapp.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread", h.CountUnread)
	rg.PATCH("/:id/read", h.MarkRead)
	rg.PATCH("/read-all", h.MarkAllRead)
}

func (h *HTTPHandler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page = max(page, 1)
	if limit < 1 {
		limit = 20
	}
	limit = min(limit, 50)

	items, total, err := h.svc.List(c.Request.Context(), identity.UserID(), page, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"items": items,
		"total": total,
		"page":  page,
	})
}

func (h *HTTPHandler) CountUnread(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"count": count})
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), identity.UserID(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "ok"})
}

func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.MarkAllRead(c.Request.Context(), identity.UserID()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "ok"})
}
