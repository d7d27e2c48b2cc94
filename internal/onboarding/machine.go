// Package onboarding drives the fixed question sequence that collects the
// minimum profile from a new user. One extractor per step; a failed
// extraction re-asks the same question and never advances.
package onboarding

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/extract"
	"github.com/coachhub/coach-gateway/internal/profile"
)

// WelcomePrompt opens onboarding for a brand-new identity.
const WelcomePrompt = "Hey, I'm your coach! Before we start training together I need a few details. What's your name?"

// Machine advances onboarding state one validated answer at a time.
type Machine struct {
	logger *slog.Logger
}

func NewMachine(logger *slog.Logger) *Machine {
	return &Machine{logger: logger}
}

// Result is the outcome of processing one answer.
type Result struct {
	// Success is false when extraction failed and the step did not advance.
	Success bool
	// Reply is the next prompt, or the re-ask on failure.
	Reply string
	// Done is true once the user confirmed. The caller creates the profile
	// from the accumulated draft and marks the step complete; until then the
	// state stays at the confirmation step.
	Done bool
}

// ProcessStep applies the current step's extractor to the answer, mutating
// the state in place. Retry-until-valid: the only escape is a valid answer.
func (m *Machine) ProcessStep(state *conversation.OnboardingState, answer string) Result {
	switch state.Step {
	case conversation.StepName:
		return m.stepName(state, answer)
	case conversation.StepHasTimetable:
		return m.stepHasTimetable(state, answer)
	case conversation.StepCurrentTimetable:
		return m.stepCurrentTimetable(state, answer)
	case conversation.StepGymTime:
		return m.stepGymTime(state, answer)
	case conversation.StepHeight:
		return m.stepHeight(state, answer)
	case conversation.StepWeight:
		return m.stepWeight(state, answer)
	case conversation.StepPhilosophy:
		return m.stepPhilosophy(state, answer)
	case conversation.StepSuggestTimetable:
		return m.stepSuggestTimetable(state, answer)
	case conversation.StepConfirmSchedule:
		return m.stepConfirmSchedule(state, answer)
	default:
		m.logger.Error("Unknown onboarding step", "step", state.Step)
		state.Reset()
		return Result{Reply: WelcomePrompt}
	}
}

func (m *Machine) stepName(state *conversation.OnboardingState, answer string) Result {
	name, ok := extract.ParseName(answer)
	if !ok {
		return retry("Sorry, I didn't catch your name. What should I call you?")
	}
	state.Data.Name = name
	state.Step = conversation.StepHasTimetable
	return advance(fmt.Sprintf("Nice to meet you, %s! Do you already follow a weekly workout timetable?", name))
}

func (m *Machine) stepHasTimetable(state *conversation.OnboardingState, answer string) Result {
	switch extract.ParseYesNo(answer) {
	case extract.AnswerYes:
		state.Data.HasTimetable = true
		state.Step = conversation.StepCurrentTimetable
		return advance("Great! What does your current training week look like? Just list the days you train.")
	case extract.AnswerNo:
		state.Data.HasTimetable = false
		state.Step = conversation.StepGymTime
		return advance("No problem, we'll build one together. What time of day do you usually get to the gym?")
	default:
		return retry("Just a quick yes or no: do you already follow a weekly workout timetable?")
	}
}

func (m *Machine) stepCurrentTimetable(state *conversation.OnboardingState, answer string) Result {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return retry("Tell me about your current training week, for example \"Monday, Wednesday and Friday\".")
	}
	state.Data.CurrentTimetable = trimmed
	state.Step = conversation.StepGymTime
	return advance("Got it. What time of day do you usually get to the gym?")
}

func (m *Machine) stepGymTime(state *conversation.OnboardingState, answer string) Result {
	normalized, ok := extract.ParseClockTime(answer)
	if !ok {
		return retry("I couldn't work out a time from that. Try something like \"7pm\", \"18:30\" or \"in the morning\".")
	}
	state.Data.GymTime = normalized
	state.Step = conversation.StepHeight
	return advance("How tall are you?")
}

func (m *Machine) stepHeight(state *conversation.OnboardingState, answer string) Result {
	cm, ok := extract.ParseHeight(answer)
	if !ok {
		return retry("I couldn't read that as a height. Try \"175 cm\" or \"5 feet 9 inches\".")
	}
	state.Data.HeightCm = cm
	state.Step = conversation.StepWeight
	return advance("And how much do you weigh?")
}

func (m *Machine) stepWeight(state *conversation.OnboardingState, answer string) Result {
	kg, ok := extract.ParseWeight(answer)
	if !ok {
		return retry("I couldn't read that as a weight. Try \"70 kg\" or \"154 lbs\".")
	}
	state.Data.WeightKg = kg
	state.Step = conversation.StepPhilosophy
	return advance("How do you like to train? High volume, high intensity, pure strength, or a balanced mix?")
}

func (m *Machine) stepPhilosophy(state *conversation.OnboardingState, answer string) Result {
	preset, ok := extract.ParsePhilosophy(answer)
	if !ok {
		return retry("Pick the style closest to yours: high volume, high intensity, strength, or balanced.")
	}
	state.Data.Philosophy = preset
	if state.Data.HasTimetable {
		state.Step = conversation.StepConfirmSchedule
		return advance(m.confirmPrompt(state.Data))
	}
	state.Step = conversation.StepSuggestTimetable
	return advance("Would you like a 3-day or a 6-day plan per week?")
}

func (m *Machine) stepSuggestTimetable(state *conversation.OnboardingState, answer string) Result {
	size, ok := extract.ParsePlanSize(answer)
	if !ok {
		return retry("3 days or 6 days a week, which works better for you?")
	}
	state.Data.PlanSize = size
	state.Step = conversation.StepConfirmSchedule
	return advance(m.confirmPrompt(state.Data))
}

func (m *Machine) stepConfirmSchedule(state *conversation.OnboardingState, answer string) Result {
	switch extract.ParseYesNo(answer) {
	case extract.AnswerYes:
		// The step stays here: the caller advances it once the profile is
		// actually persisted, so a failed create can be retried with
		// another yes.
		return Result{
			Success: true,
			Done:    true,
			Reply:   fmt.Sprintf("You're all set, %s! Say \"at the gym\" whenever you start a session and I'll log it with you.", state.Data.Name),
		}
	case extract.AnswerNo:
		// Full restart by design; no partial correction.
		state.Reset()
		return advance("Alright, let's start over. What's your name?")
	default:
		return retry(m.confirmPrompt(state.Data))
	}
}

// confirmPrompt summarizes the draft, including BMI once height and weight
// are both known.
func (m *Machine) confirmPrompt(d conversation.ProfileDraft) string {
	days := DeriveDays(d)
	window := extract.MapWindow(d.GymTime)

	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I've got, %s:\n", d.Name)
	fmt.Fprintf(&b, "- Training days: %s\n", strings.Join(days, ", "))
	fmt.Fprintf(&b, "- Gym time: %s\n", window)
	fmt.Fprintf(&b, "- Height: %.0f cm, weight: %.0f kg (BMI %.1f)\n",
		d.HeightCm, d.WeightKg, extract.BMI(d.WeightKg, d.HeightCm))
	fmt.Fprintf(&b, "- Style: %s\n", strings.ReplaceAll(d.Philosophy, "_", " "))
	b.WriteString("Shall I set this up? (yes/no)")
	return b.String()
}

var (
	threeDayPlan = []string{"monday", "wednesday", "friday"}
	sixDayPlan   = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
)

// DeriveDays parses workout days out of the free-text timetable; when none
// are found it falls back to the suggested plan size (3 days by default).
func DeriveDays(d conversation.ProfileDraft) []string {
	if days := extract.ParseWeekdays(d.CurrentTimetable); len(days) > 0 {
		return days
	}
	if d.PlanSize == 6 {
		return sixDayPlan
	}
	return threeDayPlan
}

// BuildProfile assembles the profile to create once onboarding completes.
func BuildProfile(externalID string, d conversation.ProfileDraft) *profile.Profile {
	return &profile.Profile{
		ExternalID: externalID,
		Name:       d.Name,
		HeightCm:   d.HeightCm,
		WeightKg:   d.WeightKg,
		Philosophy: d.Philosophy,
		Schedule: profile.Schedule{
			Days:   DeriveDays(d),
			Window: extract.MapWindow(d.GymTime),
		},
	}
}

func retry(reply string) Result {
	return Result{Success: false, Reply: reply}
}

func advance(reply string) Result {
	return Result{Success: true, Reply: reply}
}
