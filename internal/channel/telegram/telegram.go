package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/coachhub/coach-gateway/internal/channel"
)

type TelegramAdapter struct {
	bot      *tgbotapi.BotAPI
	token    string
	incoming chan *channel.Message
}

func NewTelegramAdapter(token string) *TelegramAdapter {
	return &TelegramAdapter{
		token:    token,
		incoming: make(chan *channel.Message, 100),
	}
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) IsEnabled() bool {
	return t.token != ""
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return err
	}
	t.bot = bot
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for update := range updates {
			if update.Message == nil {
				continue
			}
			msg := &channel.Message{
				ID:      strconv.Itoa(update.Message.MessageID),
				Channel: "telegram",
				UserID:  strconv.FormatInt(update.Message.Chat.ID, 10),
				Content: update.Message.Text,
				Metadata: map[string]string{
					"from_id": strconv.FormatInt(update.Message.From.ID, 10),
				},
				Timestamp: int64(update.Message.Date),
			}
			if len(update.Message.Photo) > 0 {
				// Largest photo size is last in the slice.
				photo := update.Message.Photo[len(update.Message.Photo)-1]
				if b64, err := t.downloadPhoto(photo.FileID); err == nil {
					msg.ImageB64 = b64
				}
			}
			t.incoming <- msg
		}
	}()
	return nil
}

func (t *TelegramAdapter) downloadPhoto(fileID string) (string, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file URL: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (t *TelegramAdapter) Stop() error {
	close(t.incoming)
	return nil
}

// SendMessage delivers the reply. Suggestions render as a one-time reply
// keyboard so the user can tap instead of type.
func (t *TelegramAdapter) SendMessage(userID string, resp *channel.Response) error {
	chatID, _ := strconv.ParseInt(userID, 10, 64)
	reply := tgbotapi.NewMessage(chatID, resp.Content)
	if len(resp.Suggestions) > 0 {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(resp.Suggestions))
		for _, s := range resp.Suggestions {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(s))
		}
		reply.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(buttons)
	} else {
		reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	_, err := t.bot.Send(reply)
	return err
}

func (t *TelegramAdapter) Incoming() <-chan *channel.Message {
	return t.incoming
}
