// Package email renders and delivers the transactional emails triggered by
// the intake and routing pipeline.
package email

import "context"

// Sender delivers transactional emails. Implementations must be safe for
// concurrent use; callers treat delivery as best-effort.
type Sender interface {
	SendLeadReceivedEmail(ctx context.Context, toEmail, applicantName, serviceType string) error
	SendAssignmentOfferEmail(ctx context.Context, toEmail, providerName, serviceType, corridor, expiresAt, reviewURL string) error
	SendCaseOpenedEmail(ctx context.Context, toEmail, applicantName, caseReference, providerName, providerEmail, providerPhone string) error
	SendNoProviderFoundEmail(ctx context.Context, toEmail, applicantName string) error
}

// NoopSender discards all emails. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendLeadReceivedEmail(ctx context.Context, toEmail, applicantName, serviceType string) error {
	return nil
}

func (NoopSender) SendAssignmentOfferEmail(ctx context.Context, toEmail, providerName, serviceType, corridor, expiresAt, reviewURL string) error {
	return nil
}

func (NoopSender) SendCaseOpenedEmail(ctx context.Context, toEmail, applicantName, caseReference, providerName, providerEmail, providerPhone string) error {
	return nil
}

func (NoopSender) SendNoProviderFoundEmail(ctx context.Context, toEmail, applicantName string) error {
	return nil
}
