package engine

import (
	"testing"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/userchallenge"
)

func TestFadeStrokeScenario(t *testing.T) {
	stroke := challengetype.HealthRisk{ID: "r_stroke", Name: "Stroke", FadeStartDays: 14, FadeEndDays: 365}

	cases := []struct {
		days, want int
	}{
		{0, 0},
		{14, 0},
		{15, 0},   // round(100*1/351)
		{189, 50}, // halfway through the window
		{364, 100},
		{365, 100},
		{400, 100}, // clamped
	}
	for _, tc := range cases {
		if got := Fade(stroke, userchallenge.ModeQuitting, tc.days); got != tc.want {
			t.Errorf("Fade(stroke, %d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

func TestFadeZeroOutsideQuittingMode(t *testing.T) {
	stroke := challengetype.HealthRisk{FadeStartDays: 1, FadeEndDays: 2}
	for _, mode := range []userchallenge.Mode{userchallenge.ModeReduction, userchallenge.ModeTracking} {
		if got := Fade(stroke, mode, 500); got != 0 {
			t.Errorf("Fade in %s mode = %d, want 0", mode, got)
		}
	}
}

func TestFadeMonotoneAndBounded(t *testing.T) {
	risk := challengetype.HealthRisk{FadeStartDays: 3, FadeEndDays: 90}
	prev := 0
	for d := 0; d <= 200; d++ {
		got := Fade(risk, userchallenge.ModeQuitting, d)
		if got < 0 || got > 100 {
			t.Fatalf("Fade(%d) = %d, out of [0,100]", d, got)
		}
		if got < prev {
			t.Fatalf("Fade regressed at day %d: %d < %d", d, got, prev)
		}
		prev = got
	}
}

func TestFadesCoversEveryRisk(t *testing.T) {
	ct := quitSmokingType()
	fades := Fades(ct, userchallenge.ModeQuitting, 365)
	if len(fades) != len(ct.HealthRisks) {
		t.Fatalf("got %d fades, want %d", len(fades), len(ct.HealthRisks))
	}
	if fades[0].Fade != 100 {
		t.Errorf("fade at end of window = %d, want 100", fades[0].Fade)
	}
}
