package engine

import (
	"math"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/userchallenge"
)

// Fade is the percentage a health risk has receded after the given number of
// smoke-free days. Outside quitting mode the risk is fully present. The
// result is clamped to [0,100] and is non-decreasing in days, since the UI
// renders it as a progress bar that must never move backwards.
func Fade(risk challengetype.HealthRisk, mode userchallenge.Mode, days int) int {
	if mode != userchallenge.ModeQuitting {
		return 0
	}
	if days <= risk.FadeStartDays {
		return 0
	}
	if days >= risk.FadeEndDays {
		return 100
	}
	span := risk.FadeEndDays - risk.FadeStartDays
	if span <= 0 {
		return 100
	}
	pct := int(math.Round(100 * float64(days-risk.FadeStartDays) / float64(span)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RiskFade pairs a risk with its current fade for the widget payload.
type RiskFade struct {
	Risk challengetype.HealthRisk `json:"risk"`
	Fade int                      `json:"fade"`
}

// Fades computes every risk of a challenge type at once, in catalog order.
func Fades(ct *challengetype.ChallengeType, mode userchallenge.Mode, days int) []RiskFade {
	out := make([]RiskFade, 0, len(ct.HealthRisks))
	for _, risk := range ct.HealthRisks {
		out = append(out, RiskFade{Risk: risk, Fade: Fade(risk, mode, days)})
	}
	return out
}
