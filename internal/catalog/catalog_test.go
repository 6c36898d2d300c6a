package catalog

import (
	"strings"
	"testing"

	"quitPathAPI/internal/types/icon"
	"quitPathAPI/internal/types/userchallenge"
)

const validYAML = `
challenge_types:
  - id: quit_smoking
    name: Quit Smoking
    icon: cigarette
    modes: [quitting, reduction]
    required_categories: [cigarette_count]
    show_health_risks: true
    reduction_reset_threshold: 10
    milestones:
      - id: m_week
        days_required: 7
        name: One Week
        icon: medal
        points_awarded: 70
      - id: m_day1
        days_required: 1
        name: First Day
        icon: leaf
        points_awarded: 10
    health_risks:
      - id: r_stroke
        name: Stroke
        icon: brain
        fade_start_days: 14
        fade_end_days: 365
`

func TestParseValidCatalog(t *testing.T) {
	types, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(types) != 1 {
		t.Fatalf("got %d types, want 1", len(types))
	}
	ct := types[0]
	if ct.Slug != "quit-smoking" {
		t.Errorf("Slug = %q, want quit-smoking", ct.Slug)
	}
	if ct.Icon != icon.IconCigarette {
		t.Errorf("Icon = %q", ct.Icon)
	}
	if !ct.OffersMode(userchallenge.ModeReduction) || ct.OffersMode(userchallenge.ModeTracking) {
		t.Errorf("Modes = %v", ct.Modes)
	}
	// Milestones come out sorted by days_required regardless of file order.
	if ct.Milestones[0].ID != "m_day1" || ct.Milestones[1].ID != "m_week" {
		t.Errorf("milestones not sorted: %+v", ct.Milestones)
	}
	if ct.ReductionResetThreshold == nil || *ct.ReductionResetThreshold != 10 {
		t.Errorf("ReductionResetThreshold = %v", ct.ReductionResetThreshold)
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		mangle  func(string) string
		wantMsg string
	}{
		{"unknown icon", func(s string) string { return strings.Replace(s, "icon: cigarette", "icon: sparkles", 1) }, "unknown icon"},
		{"unknown mode", func(s string) string { return strings.Replace(s, "quitting", "vaping", 1) }, "unknown mode"},
		{"inverted fade window", func(s string) string { return strings.Replace(s, "fade_end_days: 365", "fade_end_days: 14", 1) }, "fade window"},
		{"negative days", func(s string) string { return strings.Replace(s, "days_required: 7", "days_required: -7", 1) }, "days_required"},
		{"duplicate milestone", func(s string) string { return strings.Replace(s, "id: m_day1", "id: m_week", 1) }, "duplicate milestone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.mangle(validYAML)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestParseRejectsEmptyCatalog(t *testing.T) {
	if _, err := Parse([]byte("challenge_types: []")); err == nil {
		t.Fatal("empty catalog must not load")
	}
}

func TestLoadShippedCatalog(t *testing.T) {
	types, err := Load("../../config/challenge_catalog.yaml")
	if err != nil {
		t.Fatalf("shipped catalog failed to load: %v", err)
	}
	if len(types) == 0 {
		t.Fatal("shipped catalog is empty")
	}
}
