// Package handler exposes the routing module's provider-facing endpoints.
package handler

import (
	"net/http"

	"github.com/paasforest/immigrationai-sub000/internal/routing/service"
	"github.com/paasforest/immigrationai-sub000/internal/routing/transport"
	"github.com/paasforest/immigrationai-sub000/platform/httpkit"
	"github.com/paasforest/immigrationai-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles assignment endpoints for authenticated providers.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates the routing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts assignment routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListQueue)
	rg.GET("/:id", h.GetAssignment)
	rg.POST("/:id/respond", h.Respond)
}

// RegisterLeadRoutes mounts the per-lead offer history under the provider
// leads group.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/assignments", h.ListLeadHistory)
}

// ListQueue returns the calling provider's open offers.
func (h *Handler) ListQueue(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	assignments, err := h.svc.ListProviderQueue(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAssignmentResponses(assignments))
}

// GetAssignment returns one assignment, lazily expiring it when overdue.
func (h *Handler) GetAssignment(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	assignment, err := h.svc.GetAssignmentForProvider(c.Request.Context(), assignmentID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAssignmentResponse(assignment))
}

// ListLeadHistory returns the full offer timeline of a lead to a provider
// who has held an assignment for it. Attempt numbers and outcomes are
// visible; other providers' decline reasons are not.
func (h *Handler) ListLeadHistory(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	assignments, err := h.svc.ListLeadAssignments(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	offered := false
	for _, a := range assignments {
		if a.ProviderID == identity.UserID() {
			offered = true
			break
		}
	}
	if !offered {
		httpkit.Error(c, http.StatusForbidden, "lead was never offered to you", nil)
		return
	}

	httpkit.OK(c, transport.ToLeadHistoryResponses(assignments, identity.UserID()))
}

// Respond processes a provider's accept or decline of an offer. Accept
// returns the created case; decline returns a plain status, with
// reassignment running in the background.
func (h *Handler) Respond(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	converted, err := h.svc.Respond(c.Request.Context(), assignmentID, identity.UserID(), req.Action, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}

	if converted != nil {
		httpkit.OK(c, transport.ConvertedCaseResponse{
			CaseID:    converted.CaseID,
			Reference: converted.Reference,
		})
		return
	}

	httpkit.OK(c, gin.H{"status": "declined"})
}
