// Package repository provides persistence for lead intake and lookup.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the lead does not exist.
	ErrNotFound = errors.New("lead not found")
	// ErrUnknownServiceType indicates the referenced service type does not
	// exist or is inactive.
	ErrUnknownServiceType = errors.New("unknown service type")
)

// Lead is the stored intake request.
type Lead struct {
	ID                 uuid.UUID
	ServiceTypeID      uuid.UUID
	ServiceTypeName    string
	ApplicantName      string
	ApplicantEmail     string
	ApplicantPhone     string
	OriginCountry      string
	DestinationCountry string
	Urgency            string
	Description        string
	Status             string
	CaseID             *uuid.UUID
	CreatedAt          time.Time
	ExpiresAt          time.Time
}

// Repository persists leads in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a lead repository over the given pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateParams describes a new lead submission.
type CreateParams struct {
	ServiceTypeID      uuid.UUID
	ApplicantName      string
	ApplicantEmail     string
	ApplicantPhone     string
	OriginCountry      string
	DestinationCountry string
	Urgency            string
	Description        string
	ExpiresAt          time.Time
}

// Create inserts a lead in pending_assignment. The service type must exist
// and be active; inactive or unknown types return ErrUnknownServiceType.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Lead, error) {
	lead := Lead{
		ServiceTypeID:      params.ServiceTypeID,
		ApplicantName:      params.ApplicantName,
		ApplicantEmail:     params.ApplicantEmail,
		ApplicantPhone:     params.ApplicantPhone,
		OriginCountry:      params.OriginCountry,
		DestinationCountry: params.DestinationCountry,
		Urgency:            params.Urgency,
		Description:        params.Description,
		Status:             "pending_assignment",
		ExpiresAt:          params.ExpiresAt,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads
			(service_type_id, applicant_name, applicant_email, applicant_phone,
			 origin_country, destination_country, urgency, description,
			 status, expires_at)
		SELECT st.id, $2, $3, $4, $5, $6, $7, $8, 'pending_assignment', $9
		FROM service_types st
		WHERE st.id = $1 AND st.active
		RETURNING id, created_at`,
		params.ServiceTypeID, params.ApplicantName, params.ApplicantEmail,
		params.ApplicantPhone, params.OriginCountry, params.DestinationCountry,
		params.Urgency, params.Description, params.ExpiresAt,
	).Scan(&lead.ID, &lead.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrUnknownServiceType
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Lead{}, ErrUnknownServiceType
		}
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// GetByID fetches a lead with its service type name.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT l.id, l.service_type_id, st.name, l.applicant_name,
		       l.applicant_email, l.applicant_phone, l.origin_country,
		       l.destination_country, l.urgency, l.description, l.status,
		       l.case_id, l.created_at, l.expires_at
		FROM leads l
		JOIN service_types st ON st.id = l.service_type_id
		WHERE l.id = $1`,
		id).Scan(
		&lead.ID, &lead.ServiceTypeID, &lead.ServiceTypeName, &lead.ApplicantName,
		&lead.ApplicantEmail, &lead.ApplicantPhone, &lead.OriginCountry,
		&lead.DestinationCountry, &lead.Urgency, &lead.Description, &lead.Status,
		&lead.CaseID, &lead.CreatedAt, &lead.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// GetStatus returns only the lifecycle status of a lead. Used by the public
// tracking endpoint, which must not leak applicant details.
func (r *Repository) GetStatus(ctx context.Context, id uuid.UUID) (string, error) {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM leads WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get lead status: %w", err)
	}
	return status, nil
}

// ProviderHoldsLead reports whether the provider has any assignment for the
// lead. Gates the provider-facing lead detail view.
func (r *Repository) ProviderHoldsLead(ctx context.Context, leadID, providerID uuid.UUID) (bool, error) {
	var holds bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM assignments
			WHERE lead_id = $1 AND provider_id = $2)`,
		leadID, providerID).Scan(&holds)
	if err != nil {
		return false, fmt.Errorf("check provider lead access: %w", err)
	}
	return holds, nil
}
