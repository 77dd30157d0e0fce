// Package transport defines the providers module's request and response
// shapes.
package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/providers/repository"
)

// SpecializationRequest is the create/update payload for a specialization.
type SpecializationRequest struct {
	ServiceTypeID      uuid.UUID `json:"service_type_id" validate:"required"`
	OriginCountries    []string  `json:"origin_countries" validate:"max=50,dive,len=2"`
	DestCountries      []string  `json:"dest_countries" validate:"max=50,dive,len=2"`
	MaxConcurrentLeads int       `json:"max_concurrent_leads" validate:"required,min=1,max=500"`
	AcceptingLeads     bool      `json:"accepting_leads"`
	SuccessRate        *int      `json:"success_rate" validate:"omitempty,min=0,max=100"`
	Independent        bool      `json:"independent"`
}

// ProviderResponse is the provider's own profile view.
type ProviderResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SpecializationResponse is the API view of a specialization.
type SpecializationResponse struct {
	ID                 uuid.UUID `json:"id"`
	ServiceTypeID      uuid.UUID `json:"service_type_id"`
	OriginCountries    []string  `json:"origin_countries"`
	DestCountries      []string  `json:"dest_countries"`
	MaxConcurrentLeads int       `json:"max_concurrent_leads"`
	AcceptingLeads     bool      `json:"accepting_leads"`
	SuccessRate        *int      `json:"success_rate,omitempty"`
	Independent        bool      `json:"independent"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ServiceTypeResponse is the API view of a routable service type.
type ServiceTypeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ToProviderResponse maps a repository provider to its API view.
func ToProviderResponse(p repository.Provider) ProviderResponse {
	return ProviderResponse{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		OrganizationID: p.OrganizationID,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
	}
}

// ToSpecializationResponse maps a repository specialization to its API view.
func ToSpecializationResponse(s repository.Specialization) SpecializationResponse {
	return SpecializationResponse{
		ID:                 s.ID,
		ServiceTypeID:      s.ServiceTypeID,
		OriginCountries:    emptyIfNil(s.OriginCountries),
		DestCountries:      emptyIfNil(s.DestCountries),
		MaxConcurrentLeads: s.MaxConcurrentLeads,
		AcceptingLeads:     s.AcceptingLeads,
		SuccessRate:        s.SuccessRate,
		Independent:        s.Independent,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// ToSpecializationResponses maps a slice of specializations.
func ToSpecializationResponses(specs []repository.Specialization) []SpecializationResponse {
	out := make([]SpecializationResponse, 0, len(specs))
	for _, s := range specs {
		out = append(out, ToSpecializationResponse(s))
	}
	return out
}

// ToServiceTypeResponses maps service types to their API view.
func ToServiceTypeResponses(types []repository.ServiceType) []ServiceTypeResponse {
	out := make([]ServiceTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, ServiceTypeResponse{ID: t.ID, Name: t.Name})
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
