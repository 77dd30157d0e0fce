package email

import (
	"strings"
	"testing"
)

func TestRenderEmailTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     any
		contains []string
	}{
		{
			"lead received",
			"lead_received.html",
			leadReceivedEmailData{
				baseEmailData: baseEmailData{Title: "Enquiry received"},
				ApplicantName: "Amina Yusuf",
				ServiceType:   "Work Visa",
			},
			[]string{"Amina Yusuf", "Work Visa"},
		},
		{
			"assignment offer",
			"assignment_offer.html",
			assignmentOfferEmailData{
				baseEmailData: baseEmailData{
					Title:    "New lead",
					CTALabel: "Review lead",
					CTAURL:   "https://app.example.com/provider/assignments/abc",
				},
				ProviderName: "Kofi Mensah",
				ServiceType:  "Work Visa",
				Corridor:     "NIGERIA → CANADA",
				ExpiresAt:    "Mon, 02 Feb 2026 09:00:00 UTC",
			},
			[]string{"Kofi Mensah", "NIGERIA", "https://app.example.com/provider/assignments/abc"},
		},
		{
			"case opened",
			"case_opened.html",
			caseOpenedEmailData{
				baseEmailData: baseEmailData{Title: "Case opened"},
				ApplicantName: "Amina Yusuf",
				CaseReference: "IMM-2026-X7KQ9W",
				ProviderName:  "Kofi Mensah",
				ProviderEmail: "kofi@example.com",
				ProviderPhone: "+447911123456",
			},
			[]string{"IMM-2026-X7KQ9W", "Kofi Mensah", "kofi@example.com"},
		},
		{
			"no provider found",
			"no_provider_found.html",
			noProviderFoundEmailData{
				baseEmailData: baseEmailData{Title: "Update"},
				ApplicantName: "Amina Yusuf",
			},
			[]string{"Amina Yusuf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := renderEmailTemplate(tt.template, tt.data)
			if err != nil {
				t.Fatalf("renderEmailTemplate(%s): %v", tt.template, err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("rendered %s missing %q", tt.template, want)
				}
			}
		})
	}
}
