package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coachhub/coach-gateway/internal/conversation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		current conversation.Activity
		want    conversation.Activity
	}{
		{"workout keyword", "time for a workout", conversation.ActivityNone, conversation.ActivityWorkout},
		{"meal keyword", "what should I have for my next meal", conversation.ActivityNone, conversation.ActivityMealPlanning},
		{"gym search beats workout", "find a gym near my office", conversation.ActivityNone, conversation.ActivityGymSearch},
		{"gym alone is workout", "heading to the gym now", conversation.ActivityNone, conversation.ActivityWorkout},
		{"sticky on no match", "how was your day", conversation.ActivityWorkout, conversation.ActivityWorkout},
		{"sticky from none", "how was your day", conversation.ActivityNone, conversation.ActivityNone},
		{"workout beats meal", "what do I eat before my workout", conversation.ActivityNone, conversation.ActivityWorkout},
		{"switch from meal to workout", "back to lifting", conversation.ActivityMealPlanning, conversation.ActivityWorkout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message, tt.current))
		})
	}
}
