// Package repository provides persistence for case records and the
// conversion step's reads.
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
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoOrganization indicates the provider has no owning organization;
	// conversion cannot proceed without one.
	ErrNoOrganization = errors.New("provider has no organization")
	// ErrLeadNotAccepted indicates the lead is not in a state that allows
	// conversion.
	ErrLeadNotAccepted = errors.New("lead is not awaiting conversion")
	// ErrReferenceTaken indicates the generated case reference collided.
	ErrReferenceTaken = errors.New("case reference already in use")
)

// Case is the durable record created when a lead is accepted.
type Case struct {
	ID                 uuid.UUID
	Reference          string
	LeadID             uuid.UUID
	ProviderID         uuid.UUID
	OrganizationID     uuid.UUID
	ApplicantAccountID uuid.UUID
	Priority           string
	Status             string
	CreatedAt          time.Time
}

// LeadForConversion is the slice of lead data the converter needs.
type LeadForConversion struct {
	ID             uuid.UUID
	Status         string
	ApplicantName  string
	ApplicantEmail string
	Urgency        string
	CaseID         *uuid.UUID
}

// ProviderContact carries the provider fields shared with the applicant on
// conversion.
type ProviderContact struct {
	ProviderID     uuid.UUID
	Name           string
	Email          string
	Phone          string
	OrganizationID *uuid.UUID
}

// Repository persists cases in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a case repository over the given pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetLeadForConversion fetches the lead fields needed by the converter.
func (r *Repository) GetLeadForConversion(ctx context.Context, leadID uuid.UUID) (LeadForConversion, error) {
	var lead LeadForConversion
	err := r.pool.QueryRow(ctx, `
		SELECT id, status, applicant_name, applicant_email, urgency, case_id
		FROM leads WHERE id = $1`,
		leadID).Scan(&lead.ID, &lead.Status, &lead.ApplicantName, &lead.ApplicantEmail, &lead.Urgency, &lead.CaseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadForConversion{}, ErrNotFound
	}
	if err != nil {
		return LeadForConversion{}, fmt.Errorf("get lead for conversion: %w", err)
	}
	return lead, nil
}

// GetProviderContact fetches the provider's contact details and owning
// organization.
func (r *Repository) GetProviderContact(ctx context.Context, providerID uuid.UUID) (ProviderContact, error) {
	var contact ProviderContact
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, organization_id
		FROM providers WHERE id = $1`,
		providerID).Scan(&contact.ProviderID, &contact.Name, &contact.Email, &contact.Phone, &contact.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProviderContact{}, ErrNotFound
	}
	if err != nil {
		return ProviderContact{}, fmt.Errorf("get provider contact: %w", err)
	}
	return contact, nil
}

// GetCaseByLead returns the case created for a lead, if any.
func (r *Repository) GetCaseByLead(ctx context.Context, leadID uuid.UUID) (Case, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, reference, lead_id, provider_id, organization_id,
		       applicant_account_id, priority, status, created_at
		FROM cases WHERE lead_id = $1`,
		leadID)

	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, fmt.Errorf("get case by lead: %w", err)
	}
	return c, nil
}

// ReferenceExists reports whether a case already uses the reference.
func (r *Repository) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM cases WHERE reference = $1)`, ref).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

// CreateCaseParams describes the case row to materialize.
type CreateCaseParams struct {
	Reference          string
	LeadID             uuid.UUID
	ProviderID         uuid.UUID
	OrganizationID     uuid.UUID
	ApplicantAccountID uuid.UUID
	Priority           string
}

// CreateCaseConvertLead atomically creates the case and flips the lead to
// converted with a back-reference. The lead row is locked first: a lead
// found already converted returns its existing case, making conversion
// idempotent per lead even under concurrent accepts. The unique indexes on
// cases.lead_id and cases.reference back the same guarantees declaratively.
func (r *Repository) CreateCaseConvertLead(ctx context.Context, params CreateCaseParams) (Case, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Case{}, fmt.Errorf("begin convert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var leadStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM leads WHERE id = $1 FOR UPDATE`, params.LeadID).Scan(&leadStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, fmt.Errorf("lock lead: %w", err)
	}

	if leadStatus == "converted" {
		row := tx.QueryRow(ctx, `
			SELECT id, reference, lead_id, provider_id, organization_id,
			       applicant_account_id, priority, status, created_at
			FROM cases WHERE lead_id = $1`,
			params.LeadID)
		existing, err := scanCase(row)
		if err != nil {
			return Case{}, fmt.Errorf("load existing case: %w", err)
		}
		return existing, tx.Commit(ctx)
	}
	if leadStatus != "assigned" {
		return Case{}, ErrLeadNotAccepted
	}

	created := Case{
		Reference:          params.Reference,
		LeadID:             params.LeadID,
		ProviderID:         params.ProviderID,
		OrganizationID:     params.OrganizationID,
		ApplicantAccountID: params.ApplicantAccountID,
		Priority:           params.Priority,
		Status:             "open",
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO cases (reference, lead_id, provider_id, organization_id,
		                   applicant_account_id, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'open')
		RETURNING id, created_at`,
		params.Reference, params.LeadID, params.ProviderID, params.OrganizationID,
		params.ApplicantAccountID, params.Priority,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "cases_reference_key") {
			return Case{}, ErrReferenceTaken
		}
		return Case{}, fmt.Errorf("insert case: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads
		SET status = 'converted', case_id = $2,
		    applicant_account_id = $3, updated_at = NOW()
		WHERE id = $1`,
		params.LeadID, created.ID, params.ApplicantAccountID); err != nil {
		return Case{}, fmt.Errorf("mark lead converted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Case{}, fmt.Errorf("commit convert tx: %w", err)
	}

	return created, nil
}

// ListByProvider returns the provider's cases, newest first.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Case, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, lead_id, provider_id, organization_id,
		       applicant_account_id, priority, status, created_at
		FROM cases
		WHERE provider_id = $1
		ORDER BY created_at DESC`,
		providerID)
	if err != nil {
		return nil, fmt.Errorf("list cases by provider: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// GetForProvider fetches a case scoped to its owning provider.
func (r *Repository) GetForProvider(ctx context.Context, id, providerID uuid.UUID) (Case, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, reference, lead_id, provider_id, organization_id,
		       applicant_account_id, priority, status, created_at
		FROM cases WHERE id = $1 AND provider_id = $2`,
		id, providerID)

	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, fmt.Errorf("get case for provider: %w", err)
	}
	return c, nil
}

func scanCase(row pgx.Row) (Case, error) {
	var c Case
	err := row.Scan(
		&c.ID, &c.Reference, &c.LeadID, &c.ProviderID, &c.OrganizationID,
		&c.ApplicantAccountID, &c.Priority, &c.Status, &c.CreatedAt,
	)
	return c, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
