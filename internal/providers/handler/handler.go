// Package handler exposes the provider profile and specialization endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/providers/service"
	"github.com/paasforest/immigrationai-sub000/internal/providers/transport"
	"github.com/paasforest/immigrationai-sub000/platform/httpkit"
	"github.com/paasforest/immigrationai-sub000/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles provider self-service endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates the providers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts profile routes on the provider group and the
// service-type listing on the public group.
func (h *Handler) RegisterRoutes(providerGroup, publicGroup *gin.RouterGroup) {
	providerGroup.GET("/me", h.GetProfile)
	providerGroup.GET("/me/specializations", h.ListSpecializations)
	providerGroup.POST("/me/specializations", h.CreateSpecialization)
	providerGroup.PUT("/me/specializations/:id", h.UpdateSpecialization)
	providerGroup.DELETE("/me/specializations/:id", h.DeleteSpecialization)

	publicGroup.GET("/service-types", h.ListServiceTypes)
}

// GetProfile returns the calling provider's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	provider, err := h.svc.GetProfile(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToProviderResponse(provider))
}

// ListServiceTypes returns the routable service types for intake forms.
func (h *Handler) ListServiceTypes(c *gin.Context) {
	types, err := h.svc.ListServiceTypes(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToServiceTypeResponses(types))
}

// ListSpecializations returns the calling provider's specializations.
func (h *Handler) ListSpecializations(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	specs, err := h.svc.ListSpecializations(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToSpecializationResponses(specs))
}

// CreateSpecialization adds a routing profile for a service type.
func (h *Handler) CreateSpecialization(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	req, ok := h.bindSpecialization(c)
	if !ok {
		return
	}

	spec, err := h.svc.CreateSpecialization(c.Request.Context(), identity.UserID(), toInput(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToSpecializationResponse(spec))
}

// UpdateSpecialization replaces an owned specialization's settings.
func (h *Handler) UpdateSpecialization(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	specID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	req, ok := h.bindSpecialization(c)
	if !ok {
		return
	}

	spec, err := h.svc.UpdateSpecialization(c.Request.Context(), specID, identity.UserID(), toInput(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToSpecializationResponse(spec))
}

// DeleteSpecialization removes an owned specialization.
func (h *Handler) DeleteSpecialization(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	specID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.DeleteSpecialization(c.Request.Context(), specID, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "deleted"})
}

func (h *Handler) bindSpecialization(c *gin.Context) (transport.SpecializationRequest, bool) {
	var req transport.SpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return req, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return req, false
	}
	return req, true
}

func toInput(req transport.SpecializationRequest) service.SpecializationInput {
	return service.SpecializationInput{
		ServiceTypeID:      req.ServiceTypeID,
		OriginCountries:    req.OriginCountries,
		DestCountries:      req.DestCountries,
		MaxConcurrentLeads: req.MaxConcurrentLeads,
		AcceptingLeads:     req.AcceptingLeads,
		SuccessRate:        req.SuccessRate,
		Independent:        req.Independent,
	}
}
