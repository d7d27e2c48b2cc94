// Package schedule stages and resolves gym-time changes. A detected change
// is never committed directly: it waits as a pending confirmation for an
// explicit yes on the next turn.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/extract"
	"github.com/coachhub/coach-gateway/internal/profile"
)

var changeKeywords = []string{"gym time", "my time", "schedule", "changed"}

// Negotiator detects schedule-change statements and resolves pending
// confirmations against the profile store.
type Negotiator struct {
	profiles profile.Store
	logger   *slog.Logger
}

func NewNegotiator(profiles profile.Store, logger *slog.Logger) *Negotiator {
	return &Negotiator{profiles: profiles, logger: logger}
}

// Detect reports whether the message states a new gym time that differs from
// the stored schedule. On a match it returns the staged change and the
// confirmation question. Stored state is not touched.
func (n *Negotiator) Detect(message string, current profile.Schedule) (*conversation.PendingScheduleChange, string, bool) {
	lower := strings.ToLower(message)
	matched := false
	for _, kw := range changeKeywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, "", false
	}

	normalized, ok := extract.ParseClockTime(message)
	if !ok {
		return nil, "", false
	}

	newWindow := extract.MapWindow(normalized)
	if newWindow == current.Window {
		return nil, "", false
	}

	pending := &conversation.PendingScheduleChange{
		Pending:      true,
		NewTime:      normalized,
		PreviousTime: current.Window.String(),
	}
	question := fmt.Sprintf("Sounds like your gym time moved from %s to %s. Should I update your schedule? (yes/no)",
		current.Window, newWindow)
	return pending, question, true
}

// Resolve parses the reply to a pending confirmation. Yes commits the new
// window to the profile and clears the pending flag; no discards the staged
// change; anything else re-asks without re-deriving the time.
func (n *Negotiator) Resolve(ctx context.Context, profileID string, pending *conversation.PendingScheduleChange, reply string) (string, bool, error) {
	switch extract.ParseYesNo(reply) {
	case extract.AnswerYes:
		window := extract.MapWindow(pending.NewTime)
		if _, err := n.profiles.UpdateSchedule(ctx, profileID, profile.SchedulePatch{Window: &window}); err != nil {
			return "", false, fmt.Errorf("failed to commit schedule change: %w", err)
		}
		n.logger.Info("Schedule updated", "profile_id", profileID, "window", window.Name)
		return fmt.Sprintf("Done! Your gym time is now %s.", window), true, nil
	case extract.AnswerNo:
		return fmt.Sprintf("No worries, I'll keep your schedule at %s.", pending.PreviousTime), true, nil
	default:
		return fmt.Sprintf("Should I move your gym time from %s to %s? A simple yes or no works.",
			pending.PreviousTime, extract.MapWindow(pending.NewTime)), false, nil
	}
}
