// Package scheduler sends workout reminders derived from stored schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/coachhub/coach-gateway/internal/channel"
	"github.com/coachhub/coach-gateway/internal/metrics"
	"github.com/coachhub/coach-gateway/internal/profile"
)

// ProfileLister is the slice of the profile store the scheduler needs.
type ProfileLister interface {
	ListWithSchedule(ctx context.Context) ([]profile.Profile, error)
}

// Notifier delivers a reminder to a user on whatever channel knows them.
type Notifier func(externalID string, resp *channel.Response)

// Scheduler fires an hourly cron job and nudges users whose training window
// opens this hour on a scheduled day.
type Scheduler struct {
	cron     *cron.Cron
	profiles ProfileLister
	notify   Notifier
	logger   *slog.Logger
}

func New(profiles ProfileLister, notify Notifier, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		cron:     cron.New(),
		profiles: profiles,
		notify:   notify,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.tick); err != nil {
		logger.Error("Failed to schedule reminder job", "error", err)
	}
	return s
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	profiles, err := s.profiles.ListWithSchedule(ctx)
	if err != nil {
		s.logger.Error("Failed to list profiles for reminders", "error", err)
		return
	}

	now := time.Now()
	for _, p := range profiles {
		if !DueNow(p.Schedule, now) {
			continue
		}
		s.notify(p.ExternalID, &channel.Response{
			Content:     fmt.Sprintf("Hey %s, it's almost gym time! Tell me \"at the gym\" when you start and I'll log the session.", p.Name),
			Suggestions: []string{"I'm at the gym"},
		})
		metrics.RemindersSent.Inc()
		s.logger.Info("Reminder sent", "profile_id", p.ID)
	}
}

// DueNow reports whether the schedule's window opens in the current hour on
// a scheduled day.
func DueNow(sched profile.Schedule, now time.Time) bool {
	today := strings.ToLower(now.Weekday().String())
	scheduled := false
	for _, d := range sched.Days {
		if d == today {
			scheduled = true
			break
		}
	}
	if !scheduled {
		return false
	}

	parts := strings.SplitN(sched.Window.Start, ":", 2)
	if len(parts) == 0 {
		return false
	}
	startHour, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	return now.Hour() == startHour
}
