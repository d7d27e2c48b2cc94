// Package conversation owns the conversation aggregate: the message log,
// the per-turn context, and the activity-scoped session state.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Activity is the coarse label describing which sub-flow owns the turn.
type Activity string

const (
	ActivityUnset        Activity = ""
	ActivityNone         Activity = "none"
	ActivityOnboarding   Activity = "onboarding"
	ActivityWorkout      Activity = "workout"
	ActivityMealPlanning Activity = "meal_planning"
	ActivityGymSearch    Activity = "gym_search"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation log. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// OnboardingStep enumerates the onboarding state machine.
type OnboardingStep string

const (
	StepName             OnboardingStep = "name"
	StepHasTimetable     OnboardingStep = "has_timetable"
	StepCurrentTimetable OnboardingStep = "current_timetable"
	StepGymTime          OnboardingStep = "gym_time"
	StepHeight           OnboardingStep = "height"
	StepWeight           OnboardingStep = "weight"
	StepPhilosophy       OnboardingStep = "training_philosophy"
	StepSuggestTimetable OnboardingStep = "suggest_timetable"
	StepConfirmSchedule  OnboardingStep = "confirm_schedule"
	StepComplete         OnboardingStep = "complete"
)

// ProfileDraft holds the profile fields collected so far during onboarding.
type ProfileDraft struct {
	Name             string  `json:"name,omitempty"`
	HasTimetable     bool    `json:"has_timetable"`
	CurrentTimetable string  `json:"current_timetable,omitempty"`
	GymTime          string  `json:"gym_time,omitempty"`
	HeightCm         float64 `json:"height_cm,omitempty"`
	WeightKg         float64 `json:"weight_kg,omitempty"`
	Philosophy       string  `json:"philosophy,omitempty"`
	PlanSize         int     `json:"plan_size,omitempty"`
}

// OnboardingState is the onboarding sub-state: current step plus the draft.
type OnboardingState struct {
	Step OnboardingStep `json:"step"`
	Data ProfileDraft   `json:"data"`
}

// Reset throws away everything collected and restarts at the name step.
func (s *OnboardingState) Reset() {
	s.Step = StepName
	s.Data = ProfileDraft{}
}

// ExerciseLogEntry is the authoritative record of one extracted exercise.
type ExerciseLogEntry struct {
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg,omitempty"`
}

// WorkoutSession is the workout sub-state.
type WorkoutSession struct {
	SessionID       string             `json:"session_id"`
	ExercisesLogged []ExerciseLogEntry `json:"exercises_logged"`
	CurrentExercise string             `json:"current_exercise,omitempty"`
	StartedAt       time.Time          `json:"started_at"`
}

// PendingScheduleChange is a staged, not-yet-committed schedule change
// awaiting yes/no resolution.
type PendingScheduleChange struct {
	Pending      bool   `json:"pending"`
	NewTime      string `json:"new_time"`
	PreviousTime string `json:"previous_time"`
}

// SessionData is the activity-scoped sub-state. Exactly one pointer is
// non-nil at a time; Context.Activity is the tag. Read sub-state through the
// Context accessors so the tag is always checked.
type SessionData struct {
	Onboarding     *OnboardingState       `json:"onboarding,omitempty"`
	Workout        *WorkoutSession        `json:"workout,omitempty"`
	ScheduleChange *PendingScheduleChange `json:"schedule_change,omitempty"`
}

// Context is the conversational context threaded through every turn.
type Context struct {
	Activity        Activity    `json:"current_activity"`
	Session         SessionData `json:"session_data"`
	LastInteraction time.Time   `json:"last_interaction"`
}

// OnboardingState returns the onboarding sub-state, or nil when the context
// is not in the onboarding activity.
func (c *Context) OnboardingState() *OnboardingState {
	if c.Activity != ActivityOnboarding {
		return nil
	}
	return c.Session.Onboarding
}

// WorkoutSession returns the workout sub-state, or nil when the context is
// not in the workout activity.
func (c *Context) WorkoutSession() *WorkoutSession {
	if c.Activity != ActivityWorkout {
		return nil
	}
	return c.Session.Workout
}

// PendingScheduleChange returns the staged schedule change regardless of
// activity; the negotiator must resolve before any other flow runs.
func (c *Context) PendingScheduleChange() *PendingScheduleChange {
	if c.Session.ScheduleChange == nil || !c.Session.ScheduleChange.Pending {
		return nil
	}
	return c.Session.ScheduleChange
}

// BeginOnboarding switches the context into onboarding at the name step.
func (c *Context) BeginOnboarding() *OnboardingState {
	c.Activity = ActivityOnboarding
	c.Session = SessionData{Onboarding: &OnboardingState{Step: StepName}}
	return c.Session.Onboarding
}

// BeginWorkout switches the context into a fresh workout session.
func (c *Context) BeginWorkout() *WorkoutSession {
	c.Activity = ActivityWorkout
	c.Session = SessionData{Workout: &WorkoutSession{
		SessionID: uuid.NewString(),
		StartedAt: time.Now(),
	}}
	return c.Session.Workout
}

// ClearSession drops all sub-state and returns to the given activity.
func (c *Context) ClearSession(activity Activity) {
	c.Activity = activity
	c.Session = SessionData{}
}

// Conversation is the aggregate: one active conversation per user.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Messages  []Message `json:"messages"`
	Context   Context   `json:"context"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty conversation for a user.
func New(userID string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Messages:  []Message{},
		Context:   Context{Activity: ActivityUnset},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the log. Append order defines history.
func (c *Conversation) Append(role, content string) {
	now := time.Now()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
	c.UpdatedAt = now
	c.Context.LastInteraction = now
}

// Recent returns the most recent n messages.
func (c *Conversation) Recent(n int) []Message {
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
