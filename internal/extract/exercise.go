package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Exercise is the tuple the workout tracker logs. Sets and reps may be
// absent when only the exercise name was recognized.
type Exercise struct {
	Name        string
	Sets        int
	Reps        int
	WeightKg    float64
	HasSetsReps bool
	HasWeight   bool
}

var (
	setsRepsRe = regexp.MustCompile(`(?i)(\d+)\s*sets?(?:\s*of)?\s*(\d+)\s*reps?`)
	crossRe    = regexp.MustCompile(`(?i)\b(\d+)\s*x\s*(\d+)\b`)
	exWeightRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|kgs|kilos?|kilograms?|lbs?|pounds?)\b`)
	firstDigit = regexp.MustCompile(`\d`)
)

// exerciseVocabulary is the fixed list of common exercise names matched by
// substring before falling back to positional heuristics.
var exerciseVocabulary = []string{
	"bench press", "incline press", "overhead press", "shoulder press",
	"leg press", "chest press", "deadlift", "romanian deadlift", "squat",
	"front squat", "lunge", "lat pulldown", "pull up", "pull-up", "pullup",
	"chin up", "push up", "push-up", "pushup", "barbell row", "dumbbell row",
	"cable row", "bicep curl", "hammer curl", "tricep extension",
	"tricep pushdown", "lateral raise", "face pull", "hip thrust",
	"calf raise", "leg curl", "leg extension", "dip", "plank", "crunch",
}

var exerciseFillers = []string{
	"i did", "i just did", "just did", "did", "i finished", "finished",
	"then", "next", "and", "some",
}

// ParseExercise extracts an exercise name with optional sets/reps and weight
// from a workout message. Pound weights convert to kilograms rounded to the
// nearest whole unit.
func ParseExercise(s string) Exercise {
	var ex Exercise

	if m := setsRepsRe.FindStringSubmatch(s); m != nil {
		ex.Sets, _ = strconv.Atoi(m[1])
		ex.Reps, _ = strconv.Atoi(m[2])
		ex.HasSetsReps = true
	} else if m := crossRe.FindStringSubmatch(s); m != nil {
		ex.Sets, _ = strconv.Atoi(m[1])
		ex.Reps, _ = strconv.Atoi(m[2])
		ex.HasSetsReps = true
	}

	if m := exWeightRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		unit := strings.ToLower(m[2])
		if strings.HasPrefix(unit, "lb") || strings.HasPrefix(unit, "pound") {
			v = math.Round(v * kgPerPound)
		}
		ex.WeightKg = v
		ex.HasWeight = true
	}

	ex.Name = extractExerciseName(s)
	return ex
}

func extractExerciseName(s string) string {
	lower := strings.ToLower(s)
	for _, name := range exerciseVocabulary {
		if strings.Contains(lower, name) {
			return name
		}
	}

	// Best effort: whatever precedes the first digit.
	loc := firstDigit.FindStringIndex(lower)
	if loc == nil {
		return strings.TrimSpace(trimFillers(lower))
	}
	prefix := strings.TrimSpace(lower[:loc[0]])
	prefix = strings.TrimRight(prefix, " ,:;-@x")
	return strings.TrimSpace(trimFillers(prefix))
}

func trimFillers(s string) string {
	for changed := true; changed; {
		changed = false
		for _, f := range exerciseFillers {
			if s == f {
				return ""
			}
			if strings.HasPrefix(s, f+" ") {
				s = strings.TrimSpace(s[len(f):])
				changed = true
			}
		}
	}
	return s
}
