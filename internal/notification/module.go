// Package notification sends the pipeline's emails in response to domain
// events. Subscribing here inverts the dependency: routing and cases never
// see an email provider or a template.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/email"
	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/internal/notification/repository"
	"github.com/paasforest/immigrationai-sub000/platform/config"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// Directory resolves the contacts an email needs. Satisfied by
// repository.Repository.
type Directory interface {
	GetLeadContact(ctx context.Context, leadID uuid.UUID) (repository.LeadContact, error)
	GetProviderContact(ctx context.Context, providerID uuid.UUID) (repository.ProviderContact, error)
}

// Module wires domain events to email delivery.
type Module struct {
	dir     Directory
	sender  email.Sender
	baseURL string
	log     *logger.Logger
}

// NewModule creates the notification module. When email delivery is disabled
// in config, a NoopSender is used and every handler becomes a no-op.
func NewModule(dir Directory, cfg config.EmailConfig, notifCfg config.NotificationConfig, log *logger.Logger) *Module {
	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		)
	}
	return &Module{
		dir:     dir,
		sender:  sender,
		baseURL: notifCfg.GetAppBaseURL(),
		log:     log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	bus.Subscribe(events.AssignmentOffered{}.EventName(), m)
	bus.Subscribe(events.LeadConverted{}.EventName(), m)
	bus.Subscribe(events.LeadRoutingDeadEnd{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSubmitted:
		return m.handleLeadSubmitted(ctx, e)
	case events.AssignmentOffered:
		return m.handleAssignmentOffered(ctx, e)
	case events.LeadConverted:
		return m.handleLeadConverted(ctx, e)
	case events.LeadRoutingDeadEnd:
		return m.handleLeadRoutingDeadEnd(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadSubmitted(ctx context.Context, e events.LeadSubmitted) error {
	lead, err := m.dir.GetLeadContact(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("lead submitted notification: %w", err)
	}
	if err := m.sender.SendLeadReceivedEmail(ctx, lead.ApplicantEmail, lead.ApplicantName, lead.ServiceTypeName); err != nil {
		m.log.NotifyFailure("lead_received", lead.ApplicantEmail, err)
	}
	return nil
}

func (m *Module) handleAssignmentOffered(ctx context.Context, e events.AssignmentOffered) error {
	lead, err := m.dir.GetLeadContact(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("assignment offered notification: %w", err)
	}
	provider, err := m.dir.GetProviderContact(ctx, e.ProviderID)
	if err != nil {
		return fmt.Errorf("assignment offered notification: %w", err)
	}

	corridor := fmt.Sprintf("%s → %s", lead.OriginCountry, lead.DestinationCountry)
	reviewURL := fmt.Sprintf("%s/provider/assignments/%s", m.baseURL, e.AssignmentID)
	expires := e.ExpiresAt.UTC().Format(time.RFC1123)

	if err := m.sender.SendAssignmentOfferEmail(ctx, provider.Email, provider.Name,
		lead.ServiceTypeName, corridor, expires, reviewURL); err != nil {
		m.log.NotifyFailure("assignment_offer", provider.Email, err)
	}
	return nil
}

func (m *Module) handleLeadConverted(ctx context.Context, e events.LeadConverted) error {
	lead, err := m.dir.GetLeadContact(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("lead converted notification: %w", err)
	}
	provider, err := m.dir.GetProviderContact(ctx, e.ProviderID)
	if err != nil {
		return fmt.Errorf("lead converted notification: %w", err)
	}

	if err := m.sender.SendCaseOpenedEmail(ctx, lead.ApplicantEmail, lead.ApplicantName,
		e.CaseReference, provider.Name, provider.Email, provider.Phone); err != nil {
		m.log.NotifyFailure("case_opened", lead.ApplicantEmail, err)
	}
	return nil
}

func (m *Module) handleLeadRoutingDeadEnd(ctx context.Context, e events.LeadRoutingDeadEnd) error {
	lead, err := m.dir.GetLeadContact(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("dead end notification: %w", err)
	}
	if err := m.sender.SendNoProviderFoundEmail(ctx, lead.ApplicantEmail, lead.ApplicantName); err != nil {
		m.log.NotifyFailure("no_provider_found", lead.ApplicantEmail, err)
	}
	return nil
}
