// Package handler exposes the lead intake and lookup endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/leads/service"
	"github.com/paasforest/immigrationai-sub000/internal/leads/transport"
	"github.com/paasforest/immigrationai-sub000/platform/httpkit"
	"github.com/paasforest/immigrationai-sub000/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles lead endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates the leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts the unauthenticated intake and tracking
// routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.GET("/:id/status", h.TrackStatus)
}

// RegisterProviderRoutes mounts the provider-facing lead detail route.
func (h *Handler) RegisterProviderRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetLead)
}

// Submit accepts a new intake request and schedules routing.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Submit(c.Request.Context(), service.SubmitInput{
		ServiceTypeID:      req.ServiceTypeID,
		ApplicantName:      req.ApplicantName,
		ApplicantEmail:     req.ApplicantEmail,
		ApplicantPhone:     req.ApplicantPhone,
		OriginCountry:      req.OriginCountry,
		DestinationCountry: req.DestinationCountry,
		Urgency:            req.Urgency,
		Description:        req.Description,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.SubmitLeadResponse{
		LeadID:    lead.ID,
		Status:    lead.Status,
		CreatedAt: lead.CreatedAt,
	})
}

// TrackStatus returns a lead's lifecycle status.
func (h *Handler) TrackStatus(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	status, err := h.svc.TrackStatus(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.LeadStatusResponse{LeadID: leadID, Status: status})
}

// GetLead returns the full lead detail to a provider it was offered to.
func (h *Handler) GetLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetForProvider(c.Request.Context(), leadID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}
