// Package repository provides persistence for provider profiles and their
// service specializations.
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
	// ErrNotFound indicates the provider or specialization does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSpecialization indicates the provider already has a
	// specialization for the service type.
	ErrDuplicateSpecialization = errors.New("specialization already exists for service type")
)

// Provider is an immigration adviser registered on the platform.
type Provider struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	OrganizationID *uuid.UUID
	Active         bool
	CreatedAt      time.Time
}

// Specialization is a provider's routing profile for one service type.
type Specialization struct {
	ID                 uuid.UUID
	ProviderID         uuid.UUID
	ServiceTypeID      uuid.UUID
	OriginCountries    []string
	DestCountries      []string
	MaxConcurrentLeads int
	AcceptingLeads     bool
	SuccessRate        *int
	Independent        bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ServiceType is a routable category of immigration service.
type ServiceType struct {
	ID     uuid.UUID
	Name   string
	Active bool
}

// Repository persists providers and specializations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a provider repository over the given pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProvider fetches a provider by id.
func (r *Repository) GetProvider(ctx context.Context, id uuid.UUID) (Provider, error) {
	var p Provider
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, organization_id, active, created_at
		FROM providers WHERE id = $1`,
		id).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.OrganizationID, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Provider{}, ErrNotFound
	}
	if err != nil {
		return Provider{}, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// ListServiceTypes returns all active service types.
func (r *Repository) ListServiceTypes(ctx context.Context) ([]ServiceType, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, active FROM service_types
		WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list service types: %w", err)
	}
	defer rows.Close()

	var types []ServiceType
	for rows.Next() {
		var st ServiceType
		if err := rows.Scan(&st.ID, &st.Name, &st.Active); err != nil {
			return nil, fmt.Errorf("scan service type: %w", err)
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

// ListSpecializations returns all specializations for a provider.
func (r *Repository) ListSpecializations(ctx context.Context, providerID uuid.UUID) ([]Specialization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, service_type_id, origin_countries, destination_countries,
		       max_concurrent_leads, accepting_leads, success_rate, independent,
		       created_at, updated_at
		FROM provider_specializations
		WHERE provider_id = $1
		ORDER BY created_at`,
		providerID)
	if err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	defer rows.Close()

	var specs []Specialization
	for rows.Next() {
		s, err := scanSpecialization(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, rows.Err()
}

// GetSpecialization fetches one specialization scoped to its owner.
func (r *Repository) GetSpecialization(ctx context.Context, id, providerID uuid.UUID) (Specialization, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, provider_id, service_type_id, origin_countries, destination_countries,
		       max_concurrent_leads, accepting_leads, success_rate, independent,
		       created_at, updated_at
		FROM provider_specializations
		WHERE id = $1 AND provider_id = $2`,
		id, providerID)

	s, err := scanSpecialization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Specialization{}, ErrNotFound
	}
	if err != nil {
		return Specialization{}, fmt.Errorf("get specialization: %w", err)
	}
	return s, nil
}

// CreateSpecializationParams describes a new specialization row.
type CreateSpecializationParams struct {
	ProviderID         uuid.UUID
	ServiceTypeID      uuid.UUID
	OriginCountries    []string
	DestCountries      []string
	MaxConcurrentLeads int
	AcceptingLeads     bool
	SuccessRate        *int
	Independent        bool
}

// CreateSpecialization inserts a specialization. One row per provider and
// service type; duplicates return ErrDuplicateSpecialization.
func (r *Repository) CreateSpecialization(ctx context.Context, params CreateSpecializationParams) (Specialization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO provider_specializations
			(provider_id, service_type_id, origin_countries, destination_countries,
			 max_concurrent_leads, accepting_leads, success_rate, independent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, provider_id, service_type_id, origin_countries, destination_countries,
		          max_concurrent_leads, accepting_leads, success_rate, independent,
		          created_at, updated_at`,
		params.ProviderID, params.ServiceTypeID, params.OriginCountries, params.DestCountries,
		params.MaxConcurrentLeads, params.AcceptingLeads, params.SuccessRate, params.Independent)

	s, err := scanSpecialization(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Specialization{}, ErrDuplicateSpecialization
			case "23503":
				return Specialization{}, ErrNotFound
			}
		}
		return Specialization{}, fmt.Errorf("create specialization: %w", err)
	}
	return s, nil
}

// UpdateSpecializationParams describes the mutable specialization fields.
type UpdateSpecializationParams struct {
	OriginCountries    []string
	DestCountries      []string
	MaxConcurrentLeads int
	AcceptingLeads     bool
	SuccessRate        *int
	Independent        bool
}

// UpdateSpecialization replaces the mutable fields of a specialization,
// scoped to its owner.
func (r *Repository) UpdateSpecialization(ctx context.Context, id, providerID uuid.UUID, params UpdateSpecializationParams) (Specialization, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE provider_specializations
		SET origin_countries = $3, destination_countries = $4, max_concurrent_leads = $5,
		    accepting_leads = $6, success_rate = $7, independent = $8,
		    updated_at = NOW()
		WHERE id = $1 AND provider_id = $2
		RETURNING id, provider_id, service_type_id, origin_countries, destination_countries,
		          max_concurrent_leads, accepting_leads, success_rate, independent,
		          created_at, updated_at`,
		id, providerID, params.OriginCountries, params.DestCountries,
		params.MaxConcurrentLeads, params.AcceptingLeads, params.SuccessRate, params.Independent)

	s, err := scanSpecialization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Specialization{}, ErrNotFound
	}
	if err != nil {
		return Specialization{}, fmt.Errorf("update specialization: %w", err)
	}
	return s, nil
}

// DeleteSpecialization removes a specialization, scoped to its owner.
func (r *Repository) DeleteSpecialization(ctx context.Context, id, providerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM provider_specializations
		WHERE id = $1 AND provider_id = $2`,
		id, providerID)
	if err != nil {
		return fmt.Errorf("delete specialization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSpecialization(row pgx.Row) (Specialization, error) {
	var s Specialization
	err := row.Scan(
		&s.ID, &s.ProviderID, &s.ServiceTypeID, &s.OriginCountries, &s.DestCountries,
		&s.MaxConcurrentLeads, &s.AcceptingLeads, &s.SuccessRate, &s.Independent,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
