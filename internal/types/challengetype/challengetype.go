package challengetype

import (
	"quitPathAPI/internal/types/icon"
	"quitPathAPI/internal/types/userchallenge"
)

// ChallengeType is an immutable catalog entry. Instances are loaded once at
// startup and shared read-only between services.
type ChallengeType struct {
	ID                 string               `json:"id" yaml:"id"`
	Slug               string               `json:"slug" yaml:"-"`
	Name               string               `json:"name" yaml:"name"`
	Icon               icon.Icon            `json:"icon" yaml:"-"`
	Modes              []userchallenge.Mode `json:"modes" yaml:"-"`
	RequiredCategories []string             `json:"required_categories" yaml:"required_categories"`
	Milestones         []Milestone          `json:"milestones" yaml:"-"`
	HealthRisks        []HealthRisk         `json:"health_risks" yaml:"-"`
	ShowHealthRisks    bool                 `json:"show_health_risks" yaml:"show_health_risks"`
	// ReductionResetThreshold is the cigarette count above which a
	// reduction-mode streak breaks. Nil means the count never breaks it.
	ReductionResetThreshold *int `json:"reduction_reset_threshold,omitempty" yaml:"reduction_reset_threshold"`
}

type Milestone struct {
	ID            string    `json:"id" yaml:"id"`
	DaysRequired  int       `json:"days_required" yaml:"days_required"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	Icon          icon.Icon `json:"icon" yaml:"-"`
	PointsAwarded int       `json:"points_awarded" yaml:"points_awarded"`
}

type HealthRisk struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Icon          icon.Icon `json:"icon" yaml:"-"`
	FadeStartDays int       `json:"fade_start_days" yaml:"fade_start_days"`
	FadeEndDays   int       `json:"fade_end_days" yaml:"fade_end_days"`
}

// OffersMode reports whether the challenge type can be joined in the given mode.
func (ct *ChallengeType) OffersMode(mode userchallenge.Mode) bool {
	for _, m := range ct.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// MilestoneByID returns the milestone with the given id, or nil.
func (ct *ChallengeType) MilestoneByID(id string) *Milestone {
	for i := range ct.Milestones {
		if ct.Milestones[i].ID == id {
			return &ct.Milestones[i]
		}
	}
	return nil
}
