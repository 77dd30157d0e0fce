// Package transport defines the leads module's request and response shapes.
package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/leads/repository"
)

// SubmitLeadRequest is the public intake payload.
type SubmitLeadRequest struct {
	ServiceTypeID      uuid.UUID `json:"service_type_id" validate:"required"`
	ApplicantName      string    `json:"applicant_name" validate:"required,min=2,max=200"`
	ApplicantEmail     string    `json:"applicant_email" validate:"required,email"`
	ApplicantPhone     string    `json:"applicant_phone" validate:"required,min=5,max=30"`
	OriginCountry      string    `json:"origin_country" validate:"required,len=2"`
	DestinationCountry string    `json:"destination_country" validate:"required,len=2"`
	Urgency            string    `json:"urgency" validate:"required,oneof=flexible standard urgent"`
	Description        string    `json:"description" validate:"max=4000"`
}

// SubmitLeadResponse acknowledges intake with the tracking id.
type SubmitLeadResponse struct {
	LeadID    uuid.UUID `json:"lead_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadStatusResponse is the public tracking view. Deliberately minimal.
type LeadStatusResponse struct {
	LeadID uuid.UUID `json:"lead_id"`
	Status string    `json:"status"`
}

// LeadResponse is the provider-facing lead detail.
type LeadResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ServiceTypeID      uuid.UUID  `json:"service_type_id"`
	ServiceTypeName    string     `json:"service_type_name"`
	ApplicantName      string     `json:"applicant_name"`
	ApplicantEmail     string     `json:"applicant_email"`
	ApplicantPhone     string     `json:"applicant_phone"`
	OriginCountry      string     `json:"origin_country"`
	DestinationCountry string     `json:"destination_country"`
	Urgency            string     `json:"urgency"`
	Description        string     `json:"description"`
	Status             string     `json:"status"`
	CaseID             *uuid.UUID `json:"case_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ExpiresAt          time.Time  `json:"expires_at"`
}

// ToLeadResponse maps a repository lead to its API view.
func ToLeadResponse(l repository.Lead) LeadResponse {
	return LeadResponse{
		ID:                 l.ID,
		ServiceTypeID:      l.ServiceTypeID,
		ServiceTypeName:    l.ServiceTypeName,
		ApplicantName:      l.ApplicantName,
		ApplicantEmail:     l.ApplicantEmail,
		ApplicantPhone:     l.ApplicantPhone,
		OriginCountry:      l.OriginCountry,
		DestinationCountry: l.DestinationCountry,
		Urgency:            l.Urgency,
		Description:        l.Description,
		Status:             l.Status,
		CaseID:             l.CaseID,
		CreatedAt:          l.CreatedAt,
		ExpiresAt:          l.ExpiresAt,
	}
}
