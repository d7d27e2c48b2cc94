// Package workout tracks an active gym session, turning messages into
// logged exercise tuples.
package workout

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/extract"
)

// Phrases that open a session from any activity.
var entryPhrases = []string{"at the gym", "i'm at the gym", "starting my workout"}

// Phrases that end a session deliberately. Intent drifting away from workout
// also ends it; this is an explicit escape hatch on top of that. The list
// must cover the "I'm done" suggestion chip verbatim.
var donePhrases = []string{
	"done", "finished", "that's it", "thats it", "all done",
	"i'm done", "im done", "i am done", "workout over",
}

// IsEntryTrigger reports whether the message explicitly opens a session.
func IsEntryTrigger(message string) bool {
	lower := strings.ToLower(message)
	for _, p := range entryPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Tracker extracts exercise tuples from session messages.
type Tracker struct {
	logger *slog.Logger
}

func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// Acknowledge is the first-turn response of a fresh session. No extraction
// is attempted on the entry message.
func (t *Tracker) Acknowledge(sess *conversation.WorkoutSession) string {
	return "Let's go! What exercise did you just do? Tell me sets and reps too, like \"bench press 3x10\"."
}

// Result of handling one session message.
type Result struct {
	Reply string
	// SessionDone is true when the user explicitly ended the session.
	SessionDone bool
}

// Handle runs the exercise extractor against the message and advances the
// session log. A partial tuple stages the exercise name so the next message
// can complete it.
func (t *Tracker) Handle(sess *conversation.WorkoutSession, message string) Result {
	lower := strings.TrimRight(strings.ToLower(strings.TrimSpace(message)), "!. ")
	for _, p := range donePhrases {
		if lower == p || strings.HasPrefix(lower, p+" ") {
			return Result{Reply: t.summary(sess), SessionDone: true}
		}
	}

	ex := extract.ParseExercise(message)

	// A staged exercise from the previous turn completes with just sets/reps.
	if ex.Name == "" && sess.CurrentExercise != "" {
		ex.Name = sess.CurrentExercise
	}

	if ex.Name == "" {
		return Result{Reply: "Which exercise was that? Give me the name plus sets and reps, like \"squat 5x5\"."}
	}

	if !ex.HasSetsReps {
		sess.CurrentExercise = ex.Name
		return Result{Reply: fmt.Sprintf("Nice, %s! How many sets and reps?", ex.Name)}
	}

	entry := conversation.ExerciseLogEntry{
		Exercise: ex.Name,
		Sets:     ex.Sets,
		Reps:     ex.Reps,
	}
	if ex.HasWeight {
		entry.WeightKg = ex.WeightKg
	}
	sess.ExercisesLogged = append(sess.ExercisesLogged, entry)
	sess.CurrentExercise = ""

	t.logger.Debug("Exercise logged",
		"session_id", sess.SessionID, "exercise", entry.Exercise,
		"sets", entry.Sets, "reps", entry.Reps)

	reply := fmt.Sprintf("Logged %s: %d sets of %d", entry.Exercise, entry.Sets, entry.Reps)
	if ex.HasWeight {
		reply += fmt.Sprintf(" at %.0f kg", entry.WeightKg)
	}
	reply += ". What's next?"
	return Result{Reply: reply}
}

func (t *Tracker) summary(sess *conversation.WorkoutSession) string {
	if len(sess.ExercisesLogged) == 0 {
		return "Session closed. Nothing logged this time, see you at the next one!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Great session! You logged %d exercise(s):\n", len(sess.ExercisesLogged))
	for _, e := range sess.ExercisesLogged {
		fmt.Fprintf(&b, "- %s: %dx%d", e.Exercise, e.Sets, e.Reps)
		if e.WeightKg > 0 {
			fmt.Fprintf(&b, " @ %.0f kg", e.WeightKg)
		}
		b.WriteString("\n")
	}
	b.WriteString("Rest up!")
	return b.String()
}
