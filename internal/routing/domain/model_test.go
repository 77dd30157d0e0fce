package domain

import (
	"testing"
	"time"
)

func TestAssignmentExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status AssignmentStatus
		expiry time.Time
		want   bool
	}{
		{"pending before deadline", AssignmentPending, now.Add(time.Hour), false},
		{"pending at deadline", AssignmentPending, now, false},
		{"pending past deadline", AssignmentPending, now.Add(-time.Second), true},
		{"accepted past deadline", AssignmentAccepted, now.Add(-time.Hour), false},
		{"declined past deadline", AssignmentDeclined, now.Add(-time.Hour), false},
		{"expired stays expired", AssignmentExpired, now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assignment{Status: tt.status, ExpiresAt: tt.expiry}
			if got := a.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesCorridor(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		dests       []string
		origin      string
		destination string
		want        bool
	}{
		{"both empty matches anything", nil, nil, "Nigeria", "Canada", true},
		{"origin listed", []string{"Nigeria", "Ghana"}, nil, "Nigeria", "Canada", true},
		{"origin not listed", []string{"Ghana"}, nil, "Nigeria", "Canada", false},
		{"destination listed", nil, []string{"Canada"}, "Nigeria", "Canada", true},
		{"destination not listed", nil, []string{"Germany"}, "Nigeria", "Canada", false},
		{"case-insensitive match", []string{"NIGERIA"}, []string{"canada"}, "nigeria", "Canada", true},
		{"both dimensions must match", []string{"Nigeria"}, []string{"Germany"}, "Nigeria", "Canada", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Specialization{OriginCountries: tt.origins, DestinationCountries: tt.dests}
			if got := s.MatchesCorridor(tt.origin, tt.destination); got != tt.want {
				t.Errorf("MatchesCorridor(%q, %q) = %v, want %v", tt.origin, tt.destination, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	weights := DefaultWeights()
	rate85 := 85
	rate79 := 79

	tests := []struct {
		name   string
		spec   Specialization
		active int
		want   int
	}{
		{"base only", Specialization{}, 0, 100},
		{"origin corridor bonus", Specialization{OriginCountries: []string{"Nigeria"}}, 0, 130},
		{"both corridor dimensions", Specialization{OriginCountries: []string{"Nigeria"}, DestinationCountries: []string{"Canada"}}, 0, 160},
		{"success rate at threshold", Specialization{SuccessRate: &rate85}, 0, 120},
		{"success rate below threshold", Specialization{SuccessRate: &rate79}, 0, 100},
		{"nil success rate gets no bonus", Specialization{}, 0, 100},
		{"load penalty per active assignment", Specialization{}, 3, 85},
		{"independent bonus", Specialization{Independent: true}, 0, 115},
		{
			"everything combined",
			Specialization{
				OriginCountries:      []string{"Nigeria"},
				DestinationCountries: []string{"Canada"},
				SuccessRate:          &rate85,
				Independent:          true,
			},
			2,
			100 + 30 + 30 + 20 + 15 - 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weights.Score(tt.spec, tt.active); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}
