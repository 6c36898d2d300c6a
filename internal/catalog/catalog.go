// Package catalog loads the static challenge-type definitions from YAML.
// The catalog is read once at startup and handed out read-only; bad entries
// (unknown icons, inverted fade windows, duplicate ids) fail the load instead
// of surfacing later as rendering defaults.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/icon"
	"quitPathAPI/internal/types/userchallenge"
)

type fileMilestone struct {
	ID            string `yaml:"id"`
	DaysRequired  int    `yaml:"days_required"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Icon          string `yaml:"icon"`
	PointsAwarded int    `yaml:"points_awarded"`
}

type fileHealthRisk struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Icon          string `yaml:"icon"`
	FadeStartDays int    `yaml:"fade_start_days"`
	FadeEndDays   int    `yaml:"fade_end_days"`
}

type fileChallengeType struct {
	ID                      string           `yaml:"id"`
	Name                    string           `yaml:"name"`
	Icon                    string           `yaml:"icon"`
	Modes                   []string         `yaml:"modes"`
	RequiredCategories      []string         `yaml:"required_categories"`
	Milestones              []fileMilestone  `yaml:"milestones"`
	HealthRisks             []fileHealthRisk `yaml:"health_risks"`
	ShowHealthRisks         bool             `yaml:"show_health_risks"`
	ReductionResetThreshold *int             `yaml:"reduction_reset_threshold"`
}

type catalogFile struct {
	ChallengeTypes []fileChallengeType `yaml:"challenge_types"`
}

// Load reads and validates the catalog file.
func Load(path string) ([]challengetype.ChallengeType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw catalog YAML and builds the domain types.
func Parse(data []byte) ([]challengetype.ChallengeType, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	if len(f.ChallengeTypes) == 0 {
		return nil, fmt.Errorf("catalog defines no challenge types")
	}

	seen := make(map[string]bool)
	out := make([]challengetype.ChallengeType, 0, len(f.ChallengeTypes))
	for _, raw := range f.ChallengeTypes {
		ct, err := buildChallengeType(raw)
		if err != nil {
			return nil, fmt.Errorf("challenge type %q: %w", raw.ID, err)
		}
		if seen[ct.ID] {
			return nil, fmt.Errorf("duplicate challenge type id %q", ct.ID)
		}
		seen[ct.ID] = true
		out = append(out, ct)
	}
	return out, nil
}

func buildChallengeType(raw fileChallengeType) (challengetype.ChallengeType, error) {
	var ct challengetype.ChallengeType
	if raw.ID == "" || raw.Name == "" {
		return ct, fmt.Errorf("id and name are required")
	}

	ctIcon, err := icon.Parse(raw.Icon)
	if err != nil {
		return ct, err
	}

	modes, err := parseModes(raw.Modes)
	if err != nil {
		return ct, err
	}

	milestones := make([]challengetype.Milestone, 0, len(raw.Milestones))
	seenMilestones := make(map[string]bool)
	for _, m := range raw.Milestones {
		if m.ID == "" {
			return ct, fmt.Errorf("milestone without id")
		}
		if seenMilestones[m.ID] {
			return ct, fmt.Errorf("duplicate milestone id %q", m.ID)
		}
		seenMilestones[m.ID] = true
		if m.DaysRequired < 0 {
			return ct, fmt.Errorf("milestone %q: days_required must be >= 0", m.ID)
		}
		if m.PointsAwarded < 0 {
			return ct, fmt.Errorf("milestone %q: points_awarded must be >= 0", m.ID)
		}
		mIcon, err := icon.Parse(m.Icon)
		if err != nil {
			return ct, fmt.Errorf("milestone %q: %w", m.ID, err)
		}
		milestones = append(milestones, challengetype.Milestone{
			ID:            m.ID,
			DaysRequired:  m.DaysRequired,
			Name:          m.Name,
			Description:   m.Description,
			Icon:          mIcon,
			PointsAwarded: m.PointsAwarded,
		})
	}
	sort.SliceStable(milestones, func(i, j int) bool {
		if milestones[i].DaysRequired != milestones[j].DaysRequired {
			return milestones[i].DaysRequired < milestones[j].DaysRequired
		}
		return milestones[i].ID < milestones[j].ID
	})

	risks := make([]challengetype.HealthRisk, 0, len(raw.HealthRisks))
	for _, r := range raw.HealthRisks {
		if r.ID == "" {
			return ct, fmt.Errorf("health risk without id")
		}
		if r.FadeStartDays < 0 || r.FadeEndDays <= r.FadeStartDays {
			return ct, fmt.Errorf("health risk %q: fade window %d..%d is invalid", r.ID, r.FadeStartDays, r.FadeEndDays)
		}
		rIcon, err := icon.Parse(r.Icon)
		if err != nil {
			return ct, fmt.Errorf("health risk %q: %w", r.ID, err)
		}
		risks = append(risks, challengetype.HealthRisk{
			ID:            r.ID,
			Name:          r.Name,
			Icon:          rIcon,
			FadeStartDays: r.FadeStartDays,
			FadeEndDays:   r.FadeEndDays,
		})
	}

	if raw.ReductionResetThreshold != nil && *raw.ReductionResetThreshold < 0 {
		return ct, fmt.Errorf("reduction_reset_threshold must be >= 0")
	}

	return challengetype.ChallengeType{
		ID:                      raw.ID,
		Slug:                    slug.Make(raw.Name),
		Name:                    raw.Name,
		Icon:                    ctIcon,
		Modes:                   modes,
		RequiredCategories:      raw.RequiredCategories,
		Milestones:              milestones,
		HealthRisks:             risks,
		ShowHealthRisks:         raw.ShowHealthRisks,
		ReductionResetThreshold: raw.ReductionResetThreshold,
	}, nil
}

func parseModes(raw []string) ([]userchallenge.Mode, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one mode is required")
	}
	out := make([]userchallenge.Mode, 0, len(raw))
	for _, m := range raw {
		mode := userchallenge.Mode(m)
		switch mode {
		case userchallenge.ModeQuitting, userchallenge.ModeReduction, userchallenge.ModeTracking:
			out = append(out, mode)
		default:
			return nil, fmt.Errorf("unknown mode %q", m)
		}
	}
	return out, nil
}
