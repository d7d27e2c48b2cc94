package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/coachhub/coach-gateway/internal/channel"
	"github.com/coachhub/coach-gateway/internal/channel/discord"
	"github.com/coachhub/coach-gateway/internal/channel/telegram"
	"github.com/coachhub/coach-gateway/internal/channel/webchat"
	"github.com/coachhub/coach-gateway/internal/config"
	"github.com/coachhub/coach-gateway/internal/conversation"
	"github.com/coachhub/coach-gateway/internal/llm"
	"github.com/coachhub/coach-gateway/internal/logging"
	"github.com/coachhub/coach-gateway/internal/orchestrator"
	"github.com/coachhub/coach-gateway/internal/profile"
	"github.com/coachhub/coach-gateway/internal/scheduler"
	"github.com/coachhub/coach-gateway/internal/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	// Optional .env for local development.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logging.Logger.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.WithComponent("main")
	logger.Info("Starting coach-gateway", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Profile store.
	profiles, err := profile.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to open profile store", "error", err)
		os.Exit(1)
	}
	defer profiles.Close()

	// Conversation store: Redis with in-memory fallback so turns survive a
	// Redis outage in ephemeral mode.
	var convs conversation.Store
	pingers := map[string]server.Pinger{"profiles": profiles}
	redisStore, err := conversation.NewRedisStore(conversation.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, running with ephemeral conversations", "error", err)
		convs = conversation.NewMemoryStore()
	} else {
		defer redisStore.Close()
		convs = conversation.NewFallbackStore(redisStore, logging.WithComponent("conversation"))
		pingers["conversations"] = redisStore
	}

	// Completion service client.
	completion, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		logger.Error("Failed to create completion client", "error", err)
		os.Exit(1)
	}

	orch := orchestrator.New(profiles, convs, completion, logging.WithComponent("orchestrator"))

	// Channel adapters.
	var adapters []channel.Adapter
	if cfg.Channels.Telegram.Enabled {
		adapters = append(adapters, telegram.NewTelegramAdapter(cfg.Channels.Telegram.Token))
	}
	if cfg.Channels.Discord.Enabled {
		adapters = append(adapters, discord.NewDiscordAdapter(cfg.Channels.Discord.Token))
	}
	if cfg.Channels.WebChat.Enabled {
		adapters = append(adapters, webchat.NewWebChatAdapter(cfg.Channels.WebChat.Port, logging.WithComponent("webchat")))
	}

	for _, adapter := range adapters {
		if err := adapter.Start(ctx); err != nil {
			logger.Error("Failed to start channel", "channel", adapter.Name(), "error", err)
			os.Exit(1)
		}
		logger.Info("Channel started", "channel", adapter.Name())
		go pump(ctx, adapter, orch, logging.WithComponent("gateway"))
	}

	// Workout reminders.
	if cfg.Reminders.Enabled {
		notify := func(externalID string, resp *channel.Response) {
			for _, adapter := range adapters {
				if err := adapter.SendMessage(externalID, resp); err != nil {
					logger.Debug("Reminder delivery failed", "channel", adapter.Name(), "error", err)
				}
			}
		}
		reminders := scheduler.New(profiles, notify, logging.WithComponent("scheduler"))
		reminders.Start()
		defer reminders.Stop()
		logger.Info("Reminder scheduler started")
	}

	// HTTP surface: health, metrics, direct chat.
	srv := server.New(cfg, orch, pingers, logging.WithComponent("server"))
	if err := srv.Start(ctx); err != nil {
		logger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutting down")
}

// pump feeds one adapter's inbound messages through the orchestrator and
// sends replies back. Turns for different users run concurrently; the
// orchestrator serializes per user.
func pump(ctx context.Context, adapter channel.Adapter, orch *orchestrator.Orchestrator, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-adapter.Incoming():
			if !ok {
				return
			}
			go func(msg *channel.Message) {
				var turn *orchestrator.Turn
				var err error
				if msg.ImageB64 != "" {
					turn, err = orch.ProcessImage(ctx, msg.UserID, msg.ImageB64)
				} else {
					turn, err = orch.Process(ctx, msg.UserID, msg.Content)
				}
				if err != nil {
					logger.Error("Turn failed", "channel", msg.Channel, "user_id", msg.UserID, "error", err)
					adapter.SendMessage(msg.UserID, &channel.Response{
						Content: "I couldn't find your account. Say \"hi\" to set up a new one!",
					})
					return
				}
				if err := adapter.SendMessage(msg.UserID, &channel.Response{
					Content:     turn.Message,
					Suggestions: turn.Suggestions,
				}); err != nil {
					logger.Error("Failed to send reply", "channel", msg.Channel, "user_id", msg.UserID, "error", err)
				}
			}(msg)
		}
	}
}
