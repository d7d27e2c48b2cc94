package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_gateway_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"activity", "outcome"},
	)

	LLMLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "coach_gateway_llm_latency_seconds",
			Help: "Completion service latency in seconds",
		},
	)

	LLMErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_gateway_llm_errors_total",
			Help: "Completion service errors by class",
		},
		[]string{"class"},
	)

	ActiveWorkoutSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coach_gateway_active_workout_sessions",
			Help: "Number of workout sessions currently being tracked",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_gateway_store_errors_total",
			Help: "Persistence errors by store",
		},
		[]string{"store"},
	)

	ProfilesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_gateway_profiles_created_total",
			Help: "Profiles created through onboarding",
		},
	)

	RemindersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_gateway_reminders_sent_total",
			Help: "Workout reminders delivered to channels",
		},
	)
)
