package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/internal/notification/repository"
	"github.com/paasforest/immigrationai-sub000/platform/logger"

	"github.com/google/uuid"
)

type testDirectory struct {
	lead     repository.LeadContact
	provider repository.ProviderContact
	err      error
}

func (d *testDirectory) GetLeadContact(context.Context, uuid.UUID) (repository.LeadContact, error) {
	return d.lead, d.err
}

func (d *testDirectory) GetProviderContact(context.Context, uuid.UUID) (repository.ProviderContact, error) {
	return d.provider, d.err
}

type testSender struct {
	leadReceived    int
	offers          int
	casesOpened     int
	noProviderFound int

	lastRecipient string
	lastReviewURL string
	sendErr       error
}

func (s *testSender) SendLeadReceivedEmail(_ context.Context, to, _, _ string) error {
	s.leadReceived++
	s.lastRecipient = to
	return s.sendErr
}

func (s *testSender) SendAssignmentOfferEmail(_ context.Context, to, _, _, _, _, reviewURL string) error {
	s.offers++
	s.lastRecipient = to
	s.lastReviewURL = reviewURL
	return s.sendErr
}

func (s *testSender) SendCaseOpenedEmail(_ context.Context, to, _, _, _, _, _ string) error {
	s.casesOpened++
	s.lastRecipient = to
	return s.sendErr
}

func (s *testSender) SendNoProviderFoundEmail(_ context.Context, to, _ string) error {
	s.noProviderFound++
	s.lastRecipient = to
	return s.sendErr
}

func newTestModule(dir *testDirectory, sender *testSender) *Module {
	return &Module{
		dir:     dir,
		sender:  sender,
		baseURL: "https://app.example.com",
		log:     logger.New("development"),
	}
}

func TestHandleLeadSubmitted(t *testing.T) {
	dir := &testDirectory{lead: repository.LeadContact{ApplicantEmail: "amina@example.com", ApplicantName: "Amina"}}
	sender := &testSender{}
	m := newTestModule(dir, sender)

	err := m.Handle(context.Background(), events.LeadSubmitted{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New()})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.leadReceived != 1 {
		t.Errorf("sent %d lead received emails, want 1", sender.leadReceived)
	}
	if sender.lastRecipient != "amina@example.com" {
		t.Errorf("sent to %s", sender.lastRecipient)
	}
}

func TestHandleAssignmentOffered(t *testing.T) {
	dir := &testDirectory{
		lead:     repository.LeadContact{OriginCountry: "NIGERIA", DestinationCountry: "CANADA", ServiceTypeName: "Work Visa"},
		provider: repository.ProviderContact{Email: "provider@example.com", Name: "Kofi Mensah"},
	}
	sender := &testSender{}
	m := newTestModule(dir, sender)

	assignmentID := uuid.New()
	err := m.Handle(context.Background(), events.AssignmentOffered{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignmentID,
		LeadID:       uuid.New(),
		ProviderID:   uuid.New(),
		Attempt:      1,
		ExpiresAt:    time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.offers != 1 {
		t.Errorf("sent %d offer emails, want 1", sender.offers)
	}
	if sender.lastRecipient != "provider@example.com" {
		t.Errorf("offer went to %s, want the provider", sender.lastRecipient)
	}
	if !strings.Contains(sender.lastReviewURL, assignmentID.String()) {
		t.Errorf("review URL %q should link the assignment", sender.lastReviewURL)
	}
	if !strings.HasPrefix(sender.lastReviewURL, "https://app.example.com/") {
		t.Errorf("review URL %q should be rooted at the app base URL", sender.lastReviewURL)
	}
}

func TestHandleLeadConverted(t *testing.T) {
	dir := &testDirectory{
		lead:     repository.LeadContact{ApplicantEmail: "amina@example.com"},
		provider: repository.ProviderContact{Name: "Kofi Mensah", Email: "provider@example.com", Phone: "+447911123456"},
	}
	sender := &testSender{}
	m := newTestModule(dir, sender)

	err := m.Handle(context.Background(), events.LeadConverted{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        uuid.New(),
		CaseID:        uuid.New(),
		CaseReference: "IMM-2026-X7KQ9W",
		ProviderID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.casesOpened != 1 {
		t.Errorf("sent %d case opened emails, want 1", sender.casesOpened)
	}
	if sender.lastRecipient != "amina@example.com" {
		t.Errorf("case opened email went to %s, want the applicant", sender.lastRecipient)
	}
}

func TestHandleLeadRoutingDeadEnd(t *testing.T) {
	dir := &testDirectory{lead: repository.LeadContact{ApplicantEmail: "amina@example.com"}}
	sender := &testSender{}
	m := newTestModule(dir, sender)

	err := m.Handle(context.Background(), events.LeadRoutingDeadEnd{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Outcome:   "no_match_found",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.noProviderFound != 1 {
		t.Errorf("sent %d dead end emails, want 1", sender.noProviderFound)
	}
}

func TestHandleSwallowsSendFailures(t *testing.T) {
	dir := &testDirectory{lead: repository.LeadContact{ApplicantEmail: "amina@example.com"}}
	sender := &testSender{sendErr: errors.New("smtp refused")}
	m := newTestModule(dir, sender)

	err := m.Handle(context.Background(), events.LeadSubmitted{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New()})
	if err != nil {
		t.Errorf("send failures are logged, not propagated: %v", err)
	}
}

func TestHandleReturnsLookupFailures(t *testing.T) {
	dir := &testDirectory{err: errors.New("directory down")}
	m := newTestModule(dir, &testSender{})

	err := m.Handle(context.Background(), events.LeadSubmitted{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New()})
	if err == nil {
		t.Error("contact lookup failures should propagate to the bus")
	}
}

func TestHandleIgnoresUnknownEvents(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(&testDirectory{}, sender)

	err := m.Handle(context.Background(), events.AssignmentDeclined{BaseEvent: events.NewBaseEvent()})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.leadReceived+sender.offers+sender.casesOpened+sender.noProviderFound != 0 {
		t.Error("unhandled events must not send email")
	}
}
