// Package repository provides the read models the notification handlers
// need to address and fill their emails.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested contact does not exist.
var ErrNotFound = errors.New("not found")

// LeadContact carries the applicant-facing fields of a lead.
type LeadContact struct {
	LeadID             uuid.UUID
	ApplicantName      string
	ApplicantEmail     string
	ServiceTypeName    string
	OriginCountry      string
	DestinationCountry string
}

// ProviderContact carries the provider-facing fields for offer emails.
type ProviderContact struct {
	ProviderID uuid.UUID
	Name       string
	Email      string
	Phone      string
}

// Repository reads notification contact data from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a notification read repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetLeadContact fetches the applicant contact details for a lead.
func (r *Repository) GetLeadContact(ctx context.Context, leadID uuid.UUID) (LeadContact, error) {
	var c LeadContact
	err := r.pool.QueryRow(ctx, `
		SELECT l.id, l.applicant_name, l.applicant_email, st.name,
		       l.origin_country, l.destination_country
		FROM leads l
		JOIN service_types st ON st.id = l.service_type_id
		WHERE l.id = $1`,
		leadID).Scan(&c.LeadID, &c.ApplicantName, &c.ApplicantEmail,
		&c.ServiceTypeName, &c.OriginCountry, &c.DestinationCountry)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadContact{}, ErrNotFound
	}
	if err != nil {
		return LeadContact{}, fmt.Errorf("get lead contact: %w", err)
	}
	return c, nil
}

// GetProviderContact fetches the contact details for a provider.
func (r *Repository) GetProviderContact(ctx context.Context, providerID uuid.UUID) (ProviderContact, error) {
	var c ProviderContact
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone FROM providers WHERE id = $1`,
		providerID).Scan(&c.ProviderID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProviderContact{}, ErrNotFound
	}
	if err != nil {
		return ProviderContact{}, fmt.Errorf("get provider contact: %w", err)
	}
	return c, nil
}
