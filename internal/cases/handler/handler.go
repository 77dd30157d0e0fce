// Package handler exposes the provider-facing case endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/cases/service"
	"github.com/paasforest/immigrationai-sub000/internal/cases/transport"
	"github.com/paasforest/immigrationai-sub000/platform/httpkit"
)

const msgInvalidRequest = "invalid request"

// Handler handles case endpoints for authenticated providers.
type Handler struct {
	svc *service.Service
}

// New creates the cases handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts case routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

// List returns the calling provider's cases.
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	cases, err := h.svc.ListForProvider(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToCaseResponses(cases))
}

// Get returns one of the calling provider's cases.
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.GetForProvider(c.Request.Context(), caseID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToCaseResponse(result))
}
