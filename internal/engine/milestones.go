package engine

import (
	"sort"
	"time"

	"quitPathAPI/internal/types/challengetype"
	"quitPathAPI/internal/types/userchallenge"
)

// UnlockMilestones adds every milestone whose day requirement is met and that
// is not yet unlocked, emitting one event per unlock. Only quitting mode
// unlocks; milestones already held are never revoked, whatever happens to the
// mode or the streak afterwards.
func UnlockMilestones(ch userchallenge.UserChallenge, ct *challengetype.ChallengeType, days int, now time.Time) (userchallenge.UserChallenge, []Event) {
	if ch.Mode != userchallenge.ModeQuitting {
		return ch, nil
	}

	out := ch.Clone()
	var events []Event

	milestones := sortedMilestones(ct)
	for _, m := range milestones {
		if m.DaysRequired > days || out.HasMilestone(m.ID) {
			continue
		}
		out.UnlockedMilestones = append(out.UnlockedMilestones, m.ID)
		events = append(events, Event{
			Type:          EventMilestoneUnlocked,
			ChallengeID:   out.ID,
			UserID:        out.UserID,
			At:            now,
			MilestoneID:   m.ID,
			MilestoneName: m.Name,
			Points:        m.PointsAwarded,
		})
	}
	if len(events) > 0 {
		out.UpdatedAt = now
	}
	return out, events
}

// NextMilestone is the upcoming milestone for display: the smallest day
// requirement strictly above the current smoke-free days, ids breaking ties.
func NextMilestone(ct *challengetype.ChallengeType, days int) *challengetype.Milestone {
	var next *challengetype.Milestone
	for i := range ct.Milestones {
		m := &ct.Milestones[i]
		if m.DaysRequired <= days {
			continue
		}
		if next == nil ||
			m.DaysRequired < next.DaysRequired ||
			(m.DaysRequired == next.DaysRequired && m.ID < next.ID) {
			next = m
		}
	}
	if next == nil {
		return nil
	}
	out := *next
	return &out
}

func sortedMilestones(ct *challengetype.ChallengeType) []challengetype.Milestone {
	out := append([]challengetype.Milestone(nil), ct.Milestones...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysRequired != out[j].DaysRequired {
			return out[i].DaysRequired < out[j].DaysRequired
		}
		return out[i].ID < out[j].ID
	})
	return out
}
