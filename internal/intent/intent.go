// Package intent is the coarse keyword activity classifier. It is a
// single-pass, case-insensitive substring matcher, deliberately not a model:
// the flows depend on its exact semantics for determinism.
package intent

import (
	"strings"

	"github.com/coachhub/coach-gateway/internal/conversation"
)

var (
	workoutKeywords = []string{"gym", "workout", "work out", "exercise", "training", "lifting", "lift"}
	mealKeywords    = []string{"food", "eat", "meal", "diet", "nutrition", "hungry", "recipe", "protein"}
	searchKeywords  = []string{"find", "location", "near", "nearby", "where"}
)

// Classify maps a message to an activity. Precedence: gym search (gym plus a
// find/location term) beats plain workout, workout beats meal planning. With
// no match the current activity sticks.
func Classify(message string, current conversation.Activity) conversation.Activity {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "gym") && containsAny(lower, searchKeywords) {
		return conversation.ActivityGymSearch
	}
	if containsAny(lower, workoutKeywords) {
		return conversation.ActivityWorkout
	}
	if containsAny(lower, mealKeywords) {
		return conversation.ActivityMealPlanning
	}
	return current
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
