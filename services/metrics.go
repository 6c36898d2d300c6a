package services

import "github.com/prometheus/client_golang/prometheus"

var (
	milestonesUnlockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "challenge_milestones_unlocked_total",
		Help: "Total number of milestone unlocks",
	})
	streaksResetTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "challenge_streaks_reset_total",
		Help: "Total number of streak resets",
	})
	transitionConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "challenge_transition_conflicts_total",
		Help: "Total number of lost transition write races",
	})
)

// InitMetrics registers the engine-level metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(milestonesUnlockedTotal)
	prometheus.MustRegister(streaksResetTotal)
	prometheus.MustRegister(transitionConflictsTotal)
}
