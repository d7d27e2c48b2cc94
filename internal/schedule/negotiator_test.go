package schedule

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coach-gateway/internal/extract"
	"github.com/coachhub/coach-gateway/internal/profile"
)

type fakeProfiles struct {
	byID    map[string]*profile.Profile
	updates int
}

func newFakeProfiles(profiles ...*profile.Profile) *fakeProfiles {
	s := &fakeProfiles{byID: make(map[string]*profile.Profile)}
	for _, p := range profiles {
		s.byID[p.ID] = p
	}
	return s
}

func (s *fakeProfiles) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (s *fakeProfiles) GetByExternalID(_ context.Context, externalID string) (*profile.Profile, error) {
	for _, p := range s.byID {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, profile.ErrNotFound
}

func (s *fakeProfiles) Create(_ context.Context, p *profile.Profile) (*profile.Profile, error) {
	s.byID[p.ID] = p
	return p, nil
}

func (s *fakeProfiles) UpdateSchedule(_ context.Context, id string, patch profile.SchedulePatch) (*profile.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	if patch.Days != nil {
		p.Schedule.Days = patch.Days
	}
	if patch.Window != nil {
		p.Schedule.Window = *patch.Window
	}
	s.updates++
	return p, nil
}

func eveningSchedule() profile.Schedule {
	return profile.Schedule{
		Days:   []string{"monday", "thursday"},
		Window: extract.WindowEvening,
	}
}

func TestDetect_StagesChange(t *testing.T) {
	n := NewNegotiator(newFakeProfiles(), slog.Default())

	pending, question, ok := n.Detect("my gym time changed to the morning", eveningSchedule())
	require.True(t, ok)
	require.NotNil(t, pending)
	assert.True(t, pending.Pending)
	assert.Equal(t, "morning", pending.NewTime)
	assert.Equal(t, extract.WindowEvening.String(), pending.PreviousTime)
	assert.Contains(t, question, "morning")
	assert.Contains(t, question, "yes/no")
}

func TestDetect_NoKeywordNoMatch(t *testing.T) {
	n := NewNegotiator(newFakeProfiles(), slog.Default())

	_, _, ok := n.Detect("I love training in the morning", eveningSchedule())
	assert.False(t, ok)
}

func TestDetect_NoTimeNoMatch(t *testing.T) {
	n := NewNegotiator(newFakeProfiles(), slog.Default())

	_, _, ok := n.Detect("my schedule is pretty packed", eveningSchedule())
	assert.False(t, ok)
}

func TestDetect_SameWindowNoMatch(t *testing.T) {
	n := NewNegotiator(newFakeProfiles(), slog.Default())

	_, _, ok := n.Detect("my gym time changed to 7pm", eveningSchedule())
	assert.False(t, ok)
}

func TestResolve_YesCommits(t *testing.T) {
	p := &profile.Profile{ID: "p1", Schedule: eveningSchedule()}
	store := newFakeProfiles(p)
	n := NewNegotiator(store, slog.Default())

	pending, _, ok := n.Detect("my gym time changed to the morning", p.Schedule)
	require.True(t, ok)

	reply, resolved, err := n.Resolve(context.Background(), "p1", pending, "yes")
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Contains(t, reply, "morning")
	assert.Equal(t, extract.WindowMorning, p.Schedule.Window)
	assert.Equal(t, 1, store.updates)
	// Days survive a window-only update.
	assert.Equal(t, []string{"monday", "thursday"}, p.Schedule.Days)
}

func TestResolve_NoKeepsSchedule(t *testing.T) {
	p := &profile.Profile{ID: "p1", Schedule: eveningSchedule()}
	store := newFakeProfiles(p)
	n := NewNegotiator(store, slog.Default())

	pending, _, ok := n.Detect("my gym time changed to the morning", p.Schedule)
	require.True(t, ok)

	reply, resolved, err := n.Resolve(context.Background(), "p1", pending, "no")
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Contains(t, reply, "keep")
	assert.Equal(t, extract.WindowEvening, p.Schedule.Window)
	assert.Equal(t, 0, store.updates)
}

func TestResolve_UnknownReasks(t *testing.T) {
	n := NewNegotiator(newFakeProfiles(), slog.Default())
	pending, _, ok := n.Detect("my gym time changed to the morning", eveningSchedule())
	require.True(t, ok)

	reply, resolved, err := n.Resolve(context.Background(), "p1", pending, "maybe later")
	require.NoError(t, err)
	assert.False(t, resolved)
	assert.Contains(t, reply, "yes or no")
}
