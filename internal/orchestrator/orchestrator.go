// Package orchestrator decides, for every inbound message, which sub-flow
// owns the turn and threads the conversation context through it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/intent"
	"github.com/coachhub/coach-gateway/internal/llm"
	"github.com/coachhub/coach-gateway/internal/metrics"
	"github.com/coachhub/coach-gateway/internal/onboarding"
	"github.com/coachhub/coach-gateway/internal/profile"
	"github.com/coachhub/coach-gateway/internal/schedule"
	"github.com/coachhub/coach-gateway/internal/workout"
)

// historyLimit is how many recent messages go to the completion service.
const historyLimit = 10

// Canned fallbacks per failure class. A turn always ends in a next prompt,
// never a raw error payload.
const (
	replyRateLimited = "I'm getting a lot of requests right now. Give me a few seconds and ask again!"
	replyUnreachable = "I can't reach my coaching brain at the moment. Check back shortly!"
	replyInternal    = "Something went wrong on my end. Let's try that again."
)

// Turn is the outcome of processing one inbound message.
type Turn struct {
	Message     string
	Context     conversation.Context
	Suggestions []string
}

// Orchestrator dispatches turns across onboarding, schedule negotiation,
// workout tracking and free chat.
type Orchestrator struct {
	profiles   profile.Store
	convs      conversation.Store
	completion llm.Client
	machine    *onboarding.Machine
	negotiator *schedule.Negotiator
	tracker    *workout.Tracker
	logger     *slog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func New(profiles profile.Store, convs conversation.Store, completion llm.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		profiles:   profiles,
		convs:      convs,
		completion: completion,
		machine:    onboarding.NewMachine(logger),
		negotiator: schedule.NewNegotiator(profiles, logger),
		tracker:    workout.NewTracker(logger),
		logger:     logger,
		userLocks:  make(map[string]*sync.Mutex),
	}
}

// lockUser serializes turns per user so concurrent messages cannot race on
// the conversation's read-modify-write cycle.
func (o *Orchestrator) lockUser(userID string) func() {
	o.mu.Lock()
	lock, ok := o.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		o.userLocks[userID] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Process handles one inbound text message for a user and returns the reply,
// the new context and activity-scoped suggestion chips.
func (o *Orchestrator) Process(ctx context.Context, userID, message string) (*Turn, error) {
	unlock := o.lockUser(userID)
	defer unlock()

	prof, err := profile.Resolve(ctx, o.profiles, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, profile.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}

	conv, err := o.loadConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. Unknown identity: begin onboarding. Purely contextual; no messages
	// are appended and no profile exists yet.
	if prof == nil && conv.Context.OnboardingState() == nil {
		conv.Context.BeginOnboarding()
		conv.Context.LastInteraction = time.Now()
		o.persist(ctx, conv)
		metrics.TurnsTotal.WithLabelValues(string(conversation.ActivityOnboarding), "ok").Inc()
		return &Turn{Message: onboarding.WelcomePrompt, Context: conv.Context}, nil
	}

	// 2. Active onboarding owns the whole turn; the LLM is not consulted.
	if state := conv.Context.OnboardingState(); state != nil && state.Step != conversation.StepComplete {
		return o.handleOnboarding(ctx, userID, conv, state, message)
	}

	// 3. A pending schedule confirmation must resolve before anything else.
	if pending := conv.Context.PendingScheduleChange(); pending != nil && prof != nil {
		return o.handlePendingSchedule(ctx, prof, conv, pending, message)
	}

	// 4. A newly stated gym time that differs from the stored schedule is
	// staged, not committed.
	if prof != nil {
		if pending, question, ok := o.negotiator.Detect(message, prof.Schedule); ok {
			conv.Append(conversation.RoleUser, message)
			conv.Append(conversation.RoleAssistant, question)
			conv.Context.Session.ScheduleChange = pending
			o.persist(ctx, conv)
			metrics.TurnsTotal.WithLabelValues(string(conv.Context.Activity), "ok").Inc()
			return &Turn{Message: question, Context: conv.Context, Suggestions: []string{"Yes", "No"}}, nil
		}
	}

	// 5. Workout mode, entered by activity or trigger phrase. A message that
	// classifies away from workout ends the session and falls through to
	// chat under the new activity.
	if conv.Context.Activity == conversation.ActivityWorkout || workout.IsEntryTrigger(message) {
		if sess := conv.Context.WorkoutSession(); sess != nil {
			if next := intent.Classify(message, conversation.ActivityWorkout); next != conversation.ActivityWorkout {
				conv.Context.ClearSession(next)
				metrics.ActiveWorkoutSessions.Dec()
				return o.handleChat(ctx, prof, conv, message)
			}
		}
		return o.handleWorkout(ctx, conv, message)
	}

	// 6. Free chat through the completion service.
	return o.handleChat(ctx, prof, conv, message)
}

func (o *Orchestrator) handleOnboarding(ctx context.Context, userID string, conv *conversation.Conversation, state *conversation.OnboardingState, message string) (*Turn, error) {
	res := o.machine.ProcessStep(state, message)

	outcome := "ok"
	reply := res.Reply
	if res.Done {
		created, err := o.profiles.Create(ctx, onboarding.BuildProfile(userID, state.Data))
		if err != nil {
			// The step is still at the confirmation, so another yes retries
			// the create instead of falling through to free chat.
			o.logger.Error("Failed to create profile", "user_id", userID, "error", err)
			outcome = "failed"
			reply = replyInternal
		} else {
			o.logger.Info("Profile created", "profile_id", created.ID, "external_id", userID)
			metrics.ProfilesCreated.Inc()
			state.Step = conversation.StepComplete
			conv.Context.ClearSession(conversation.ActivityNone)
		}
	}

	conv.Append(conversation.RoleUser, message)
	conv.Append(conversation.RoleAssistant, reply)
	o.persist(ctx, conv)
	metrics.TurnsTotal.WithLabelValues(string(conversation.ActivityOnboarding), outcome).Inc()
	return &Turn{Message: reply, Context: conv.Context}, nil
}

func (o *Orchestrator) handlePendingSchedule(ctx context.Context, prof *profile.Profile, conv *conversation.Conversation, pending *conversation.PendingScheduleChange, message string) (*Turn, error) {
	reply, resolved, err := o.negotiator.Resolve(ctx, prof.ID, pending, message)
	outcome := "ok"
	if err != nil {
		o.logger.Error("Failed to resolve schedule change", "profile_id", prof.ID, "error", err)
		reply = replyInternal
		resolved = true
		outcome = "failed"
	}
	if resolved {
		conv.Context.Session.ScheduleChange = nil
	}

	conv.Append(conversation.RoleUser, message)
	conv.Append(conversation.RoleAssistant, reply)
	o.persist(ctx, conv)
	metrics.TurnsTotal.WithLabelValues(string(conv.Context.Activity), outcome).Inc()

	var suggestions []string
	if !resolved {
		suggestions = []string{"Yes", "No"}
	}
	return &Turn{Message: reply, Context: conv.Context, Suggestions: suggestions}, nil
}

func (o *Orchestrator) handleWorkout(ctx context.Context, conv *conversation.Conversation, message string) (*Turn, error) {
	sess := conv.Context.WorkoutSession()
	var reply string
	if sess == nil {
		sess = conv.Context.BeginWorkout()
		metrics.ActiveWorkoutSessions.Inc()
		reply = o.tracker.Acknowledge(sess)
	} else {
		res := o.tracker.Handle(sess, message)
		reply = res.Reply
		if res.SessionDone {
			conv.Context.ClearSession(conversation.ActivityNone)
			metrics.ActiveWorkoutSessions.Dec()
		}
	}

	conv.Append(conversation.RoleUser, message)
	conv.Append(conversation.RoleAssistant, reply)
	o.persist(ctx, conv)
	metrics.TurnsTotal.WithLabelValues(string(conversation.ActivityWorkout), "ok").Inc()
	return &Turn{Message: reply, Context: conv.Context, Suggestions: suggestionsFor(conv.Context.Activity)}, nil
}

func (o *Orchestrator) handleChat(ctx context.Context, prof *profile.Profile, conv *conversation.Conversation, message string) (*Turn, error) {
	conv.Append(conversation.RoleUser, message)

	current := conv.Context.Activity
	if current == conversation.ActivityUnset {
		current = conversation.ActivityNone
	}
	conv.Context.Activity = intent.Classify(message, current)

	messages := []llm.Message{{Role: "system", Content: personaPrompt(prof, conv.Context.Activity)}}
	for _, m := range conv.Recent(historyLimit) {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	reply, err := o.completion.Complete(ctx, messages, llm.Options{})
	metrics.LLMLatency.Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "failed"
		reply = o.fallbackReply(err)
	}

	conv.Append(conversation.RoleAssistant, reply)
	o.persist(ctx, conv)
	metrics.TurnsTotal.WithLabelValues(string(conv.Context.Activity), outcome).Inc()
	return &Turn{Message: reply, Context: conv.Context, Suggestions: suggestionsFor(conv.Context.Activity)}, nil
}

// ProcessImage handles an inbound photo, typically a meal picture, via the
// completion service's image-description mode.
func (o *Orchestrator) ProcessImage(ctx context.Context, userID, imageB64 string) (*Turn, error) {
	unlock := o.lockUser(userID)
	defer unlock()

	prof, err := profile.Resolve(ctx, o.profiles, userID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}

	conv, err := o.loadConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	prompt := "Describe this meal photo and give short, practical fitness-focused feedback on it."
	if prof != nil && prof.Philosophy != "" {
		prompt += fmt.Sprintf(" The user trains %s style.", prof.Philosophy)
	}

	reply, err := o.completion.DescribeImage(ctx, imageB64, prompt)
	outcome := "ok"
	if err != nil {
		outcome = "failed"
		reply = o.fallbackReply(err)
	}

	conv.Append(conversation.RoleUser, "[photo]")
	conv.Append(conversation.RoleAssistant, reply)
	o.persist(ctx, conv)
	metrics.TurnsTotal.WithLabelValues(string(conv.Context.Activity), outcome).Inc()
	return &Turn{Message: reply, Context: conv.Context, Suggestions: suggestionsFor(conv.Context.Activity)}, nil
}

func (o *Orchestrator) loadConversation(ctx context.Context, userID string) (*conversation.Conversation, error) {
	conv, err := o.convs.FindLatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		conv = conversation.New(userID)
	}
	return conv, nil
}

// persist writes the conversation once per turn. A persistence failure is
// logged, never surfaced: the turn already has its reply.
func (o *Orchestrator) persist(ctx context.Context, conv *conversation.Conversation) {
	if err := o.convs.Upsert(ctx, conv); err != nil {
		o.logger.Error("Failed to persist conversation", "user_id", conv.UserID, "error", err)
	}
}

func (o *Orchestrator) fallbackReply(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		metrics.LLMErrors.WithLabelValues("rate_limited").Inc()
		o.logger.Warn("Completion service rate limited", "error", err)
		return replyRateLimited
	case errors.Is(err, llm.ErrUnreachable):
		metrics.LLMErrors.WithLabelValues("unreachable").Inc()
		o.logger.Warn("Completion service unreachable", "error", err)
		return replyUnreachable
	default:
		metrics.LLMErrors.WithLabelValues("internal").Inc()
		o.logger.Error("Completion call failed", "error", err)
		return replyInternal
	}
}

func personaPrompt(prof *profile.Profile, activity conversation.Activity) string {
	base := "You are an upbeat, knowledgeable personal fitness coach. Keep replies short and practical."
	if prof != nil {
		base += fmt.Sprintf(" The user is %s", prof.Name)
		if prof.Philosophy != "" {
			base += fmt.Sprintf(", trains %s style", prof.Philosophy)
		}
		if len(prof.Schedule.Days) > 0 {
			base += fmt.Sprintf(", and trains on %v at %s", prof.Schedule.Days, prof.Schedule.Window.Name)
		}
		base += "."
	}
	switch activity {
	case conversation.ActivityMealPlanning:
		base += " The current topic is meal planning and nutrition."
	case conversation.ActivityGymSearch:
		base += " The user is looking for a gym; you cannot search the web, so give general advice on choosing one."
	case conversation.ActivityWorkout:
		base += " The user is training right now; keep answers very short."
	}
	return base
}

func suggestionsFor(activity conversation.Activity) []string {
	switch activity {
	case conversation.ActivityWorkout:
		return []string{"Bench press 3x10", "I'm done"}
	case conversation.ActivityMealPlanning:
		return []string{"Plan my meals for today", "High-protein ideas"}
	case conversation.ActivityGymSearch:
		return []string{"How do I pick a gym?"}
	default:
		return []string{"I'm at the gym", "Meal ideas", "My gym time changed"}
	}
}
