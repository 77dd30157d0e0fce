package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendLeadReceivedEmail(ctx context.Context, toEmail, applicantName, serviceType string) error {
	content, err := renderEmailTemplate("lead_received.html", leadReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Enquiry received",
			Heading: "We have received your enquiry",
		},
		ApplicantName: applicantName,
		ServiceType:   serviceType,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadReceived, content)
}

func (s *SMTPSender) SendAssignmentOfferEmail(ctx context.Context, toEmail, providerName, serviceType, corridor, expiresAt, reviewURL string) error {
	subject := fmt.Sprintf(subjectAssignmentOfferFmt, serviceType)
	content, err := renderEmailTemplate("assignment_offer.html", assignmentOfferEmailData{
		baseEmailData: baseEmailData{
			Title:    "New lead available",
			Heading:  "A new lead matches your profile",
			CTALabel: "Review lead",
			CTAURL:   reviewURL,
		},
		ProviderName: providerName,
		ServiceType:  serviceType,
		Corridor:     corridor,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCaseOpenedEmail(ctx context.Context, toEmail, applicantName, caseReference, providerName, providerEmail, providerPhone string) error {
	subject := fmt.Sprintf(subjectCaseOpenedFmt, caseReference)
	content, err := renderEmailTemplate("case_opened.html", caseOpenedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Your case has been opened",
			Heading: "An adviser has taken on your case",
		},
		ApplicantName: applicantName,
		CaseReference: caseReference,
		ProviderName:  providerName,
		ProviderEmail: providerEmail,
		ProviderPhone: providerPhone,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendNoProviderFoundEmail(ctx context.Context, toEmail, applicantName string) error {
	content, err := renderEmailTemplate("no_provider_found.html", noProviderFoundEmailData{
		baseEmailData: baseEmailData{
			Title:   "Update on your enquiry",
			Heading: "We could not match you with an adviser",
		},
		ApplicantName: applicantName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectNoProviderFound, content)
}
