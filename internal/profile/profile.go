// Package profile owns the user profile aggregate and its store.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/coachhub/coach-gateway/internal/extract"
)

// ErrNotFound is returned when no profile matches the given identity.
var ErrNotFound = errors.New("profile not found")

// Profile is the minimum data the coach needs to operate, collected during
// onboarding.
type Profile struct {
	ID         string
	ExternalID string
	Name       string
	HeightCm   float64
	WeightKg   float64
	Philosophy string
	Schedule   Schedule
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Schedule is the weekly training schedule: which days, and which of the
// four canonical time windows.
type Schedule struct {
	Days   []string
	Window extract.TimeWindow
}

// SchedulePatch carries a partial schedule update.
type SchedulePatch struct {
	Days   []string
	Window *extract.TimeWindow
}

// Store is the profile persistence contract.
type Store interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByExternalID(ctx context.Context, externalID string) (*Profile, error)
	Create(ctx context.Context, p *Profile) (*Profile, error)
	UpdateSchedule(ctx context.Context, id string, patch SchedulePatch) (*Profile, error)
}

// IsInternalID reports whether the identity is a well-formed internal id.
// Anything else is treated as an external platform identifier.
func IsInternalID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Resolve looks a user up by internal id when the identity parses as one,
// otherwise by external platform id. A missing external identity resolves to
// (nil, nil) so callers can begin onboarding; a missing internal id is an
// ErrNotFound.
func Resolve(ctx context.Context, store Store, userID string) (*Profile, error) {
	if IsInternalID(userID) {
		p, err := store.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := store.GetByExternalID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
