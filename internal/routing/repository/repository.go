// Package repository provides persistence for leads and assignments.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"
	"github.com/paasforest/immigrationai-sub000/internal/routing/matcher"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced to the orchestrator. The service layer maps them
// to domain error kinds.
var (
	// ErrNotFound indicates the requested lead or assignment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLeadNotRoutable indicates the lead is not in pending_assignment.
	ErrLeadNotRoutable = errors.New("lead is not awaiting assignment")
	// ErrProviderAtCapacity indicates the capacity recheck under the
	// provider lock failed; a concurrent routing call won the slot.
	ErrProviderAtCapacity = errors.New("provider is at capacity")
	// ErrAssignmentNotPending indicates the offer was already resolved.
	ErrAssignmentNotPending = errors.New("assignment is not pending")
)

// Repository persists routing state in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a routing repository over the given pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	l.id, l.service_type_id, st.name, l.applicant_name, l.applicant_email,
	l.applicant_phone, l.origin_country, l.destination_country, l.urgency,
	l.description, l.status, l.case_id, l.created_at, l.expires_at`

// GetLead fetches a lead by ID.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads l
		JOIN service_types st ON st.id = l.service_type_id
		WHERE l.id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.ServiceTypeID, &lead.ServiceTypeName, &lead.ApplicantName,
		&lead.ApplicantEmail, &lead.ApplicantPhone, &lead.OriginCountry,
		&lead.DestinationCountry, &lead.Urgency, &lead.Description, &status,
		&lead.CaseID, &lead.CreatedAt, &lead.ExpiresAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.LeadStatus(status)
	return lead, nil
}

// ListEligibleSpecializations returns specializations for the service type
// whose provider is active and accepting, each with the provider's current
// active (pending or accepted) assignment count across all leads.
func (r *Repository) ListEligibleSpecializations(ctx context.Context, serviceTypeID uuid.UUID) ([]matcher.SpecializationWithLoad, error) {
	query := `
		SELECT ps.provider_id, ps.service_type_id, ps.origin_countries,
		       ps.destination_countries, ps.max_concurrent_leads,
		       ps.accepting_leads, ps.success_rate, ps.independent,
		       (SELECT COUNT(*) FROM assignments a
		         WHERE a.provider_id = ps.provider_id
		           AND a.status IN ('pending', 'accepted')) AS active_assignments
		FROM provider_specializations ps
		JOIN providers p ON p.id = ps.provider_id
		WHERE ps.service_type_id = $1
		  AND ps.accepting_leads = TRUE
		  AND p.active = TRUE
		ORDER BY ps.provider_id`

	rows, err := r.pool.Query(ctx, query, serviceTypeID)
	if err != nil {
		return nil, fmt.Errorf("list eligible specializations: %w", err)
	}
	defer rows.Close()

	var specs []matcher.SpecializationWithLoad
	for rows.Next() {
		var s matcher.SpecializationWithLoad
		if err := rows.Scan(
			&s.ProviderID, &s.ServiceTypeID, &s.OriginCountries,
			&s.DestinationCountries, &s.MaxConcurrentLeads,
			&s.AcceptingLeads, &s.SuccessRate, &s.Independent,
			&s.ActiveAssignments,
		); err != nil {
			return nil, fmt.Errorf("scan specialization: %w", err)
		}
		specs = append(specs, s)
	}

	return specs, rows.Err()
}

// TriedProviderIDs returns the providers that hold any assignment for the
// lead, regardless of status. These providers are never offered the lead
// again.
func (r *Repository) TriedProviderIDs(ctx context.Context, leadID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT provider_id FROM assignments WHERE lead_id = $1`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list tried providers: %w", err)
	}
	defer rows.Close()

	tried := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tried provider: %w", err)
		}
		tried[id] = true
	}

	return tried, rows.Err()
}

// CountAssignments returns how many assignments have ever been created for
// the lead.
func (r *Repository) CountAssignments(ctx context.Context, leadID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE lead_id = $1`, leadID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// OfferParams describes a new offer to create.
type OfferParams struct {
	LeadID     uuid.UUID
	ProviderID uuid.UUID
	Attempt    int
	OfferTTL   time.Duration
}

// OfferAssignment atomically creates a pending assignment and moves the lead
// to assigned. The lead row is locked to serialize per-lead routing, and a
// per-provider advisory lock guards the capacity recheck so two concurrent
// routing calls cannot over-allocate a provider past its concurrent-lead cap.
func (r *Repository) OfferAssignment(ctx context.Context, params OfferParams) (domain.Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("begin offer tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var leadStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM leads WHERE id = $1 FOR UPDATE`, params.LeadID).Scan(&leadStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, ErrNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("lock lead: %w", err)
	}
	if domain.LeadStatus(leadStatus) != domain.LeadPendingAssignment {
		return domain.Assignment{}, ErrLeadNotRoutable
	}

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, params.ProviderID); err != nil {
		return domain.Assignment{}, fmt.Errorf("acquire provider lock: %w", err)
	}

	var maxConcurrent, active int
	err = tx.QueryRow(ctx, `
		SELECT ps.max_concurrent_leads,
		       (SELECT COUNT(*) FROM assignments a
		         WHERE a.provider_id = ps.provider_id
		           AND a.status IN ('pending', 'accepted'))
		FROM provider_specializations ps
		JOIN leads l ON l.service_type_id = ps.service_type_id
		WHERE ps.provider_id = $1 AND l.id = $2`,
		params.ProviderID, params.LeadID).Scan(&maxConcurrent, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, ErrNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("recheck capacity: %w", err)
	}
	if active >= maxConcurrent {
		return domain.Assignment{}, ErrProviderAtCapacity
	}

	assignedAt := time.Now().UTC()
	assignment := domain.Assignment{
		LeadID:     params.LeadID,
		ProviderID: params.ProviderID,
		Status:     domain.AssignmentPending,
		Attempt:    params.Attempt,
		AssignedAt: assignedAt,
		ExpiresAt:  assignedAt.Add(params.OfferTTL),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO assignments (lead_id, provider_id, status, attempt, assigned_at, expires_at)
		VALUES ($1, $2, 'pending', $3, $4, $5)
		RETURNING id`,
		params.LeadID, params.ProviderID, params.Attempt, assignment.AssignedAt, assignment.ExpiresAt,
	).Scan(&assignment.ID)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("insert assignment: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE leads SET status = 'assigned', updated_at = NOW() WHERE id = $1`, params.LeadID); err != nil {
		return domain.Assignment{}, fmt.Errorf("mark lead assigned: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Assignment{}, fmt.Errorf("commit offer tx: %w", err)
	}

	return assignment, nil
}

// MarkLeadTerminal moves a pending_assignment lead into a terminal routing
// outcome (no_match_found or declined_all).
func (r *Repository) MarkLeadTerminal(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_assignment'`,
		leadID, string(status))
	if err != nil {
		return fmt.Errorf("mark lead terminal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotRoutable
	}
	return nil
}

const assignmentColumns = `
	id, lead_id, provider_id, status, attempt, assigned_at, expires_at,
	responded_at, decline_reason`

// GetAssignment fetches an assignment by ID.
func (r *Repository) GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)

	assignment, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, ErrNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return assignment, nil
}

func scanAssignment(row pgx.Row) (domain.Assignment, error) {
	var a domain.Assignment
	var status string
	err := row.Scan(
		&a.ID, &a.LeadID, &a.ProviderID, &status, &a.Attempt,
		&a.AssignedAt, &a.ExpiresAt, &a.RespondedAt, &a.DeclineReason,
	)
	if err != nil {
		return domain.Assignment{}, err
	}
	a.Status = domain.AssignmentStatus(status)
	return a, nil
}

// AcceptAssignment marks a pending assignment accepted. The lead itself is
// flipped to converted by the case converter's transaction before this runs.
func (r *Repository) AcceptAssignment(ctx context.Context, id uuid.UUID, respondedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments SET status = 'accepted', responded_at = $2
		WHERE id = $1 AND status = 'pending'`,
		id, respondedAt)
	if err != nil {
		return fmt.Errorf("accept assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotPending
	}
	return nil
}

// DeclineAssignment atomically marks a pending assignment declined and
// returns the lead to pending_assignment so it can be re-routed.
func (r *Repository) DeclineAssignment(ctx context.Context, id uuid.UUID, reason string, respondedAt time.Time) error {
	return r.resolvePending(ctx, id, `
		UPDATE assignments SET status = 'declined', responded_at = $2, decline_reason = $3
		WHERE id = $1 AND status = 'pending'`,
		id, respondedAt, reason)
}

// ExpireAssignment atomically marks a pending assignment expired and returns
// the lead to pending_assignment.
func (r *Repository) ExpireAssignment(ctx context.Context, id uuid.UUID) error {
	return r.resolvePending(ctx, id, `
		UPDATE assignments SET status = 'expired'
		WHERE id = $1 AND status = 'pending'`,
		id)
}

// resolvePending runs an assignment-terminating update plus the lead status
// reset in one transaction.
func (r *Repository) resolvePending(ctx context.Context, id uuid.UUID, updateSQL string, args ...any) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin resolve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateSQL, args...)
	if err != nil {
		return fmt.Errorf("resolve assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotPending
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET status = 'pending_assignment', updated_at = NOW()
		WHERE id = (SELECT lead_id FROM assignments WHERE id = $1) AND status = 'assigned'`,
		id); err != nil {
		return fmt.Errorf("reset lead status: %w", err)
	}

	return tx.Commit(ctx)
}

// ListStalePending returns pending assignments whose deadline is in the
// past, oldest first, for the expiry sweep.
func (r *Repository) ListStalePending(ctx context.Context, now time.Time, limit int) ([]domain.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE status = 'pending' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListByLead returns every assignment for a lead in attempt order.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE lead_id = $1
		ORDER BY attempt`,
		leadID)
	if err != nil {
		return nil, fmt.Errorf("list assignments by lead: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListPendingByProvider returns a provider's open offers, soonest deadline
// first.
func (r *Repository) ListPendingByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE provider_id = $1 AND status = 'pending'
		ORDER BY expires_at`,
		providerID)
	if err != nil {
		return nil, fmt.Errorf("list pending by provider: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListStuckPendingLeadIDs returns leads sitting in pending_assignment with
// no update since the cutoff. The sweep re-enqueues these; a failed enqueue
// after submission or decline would otherwise strand them.
func (r *Repository) ListStuckPendingLeadIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM leads
		WHERE status = 'pending_assignment' AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stuck leads: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stuck lead: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func collectAssignments(rows pgx.Rows) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
