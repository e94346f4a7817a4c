package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivancheban/salary-bot/internal/config"
)

var (
	// ErrForbidden means the bot was blocked by the user or removed from the chat.
	ErrForbidden = errors.New(config.ErrSendForbidden)
	// ErrChatNotFound means the chat id does not exist for this bot.
	ErrChatNotFound = errors.New(config.ErrSendChatNotFound)
)

const chatNotFound = "chat not found"

// Telegram implements Sender with the Telegram Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram authenticates the token against endpoint (a format string
// with the token and method, e.g. tgbotapi.APIEndpoint) and returns a sender.
func NewTelegram(token, endpoint string, client *http.Client) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: config.HTTPTimeout}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrBotInit, err)
	}

	slog.Info(config.MsgBotReady,
		config.LogKeyComponent, config.CompTelegram,
		config.LogKeyUsername, api.Self.UserName,
	)
	return &Telegram{api: api}, nil
}

// BotName returns the bot's username, used to match "/cmd@name".
func (t *Telegram) BotName() string {
	return t.api.Self.UserName
}

// Send posts text to chatID. API errors for blocked bots and unknown chats
// are mapped to ErrForbidden and ErrChatNotFound.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusForbidden:
			err = fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, chatNotFound):
			err = fmt.Errorf("%w: %s", ErrChatNotFound, apiErr.Message)
		}
	}

	slog.Error(config.ErrSend,
		config.LogKeyComponent, config.CompTelegram,
		config.LogKeyChat, chatID,
		config.LogKeyError, err,
	)
	return fmt.Errorf("%s: %w", config.ErrSend, err)
}

// CommandFromUpdate extracts the text message of an update. Updates
// without a text message report false.
func CommandFromUpdate(u tgbotapi.Update) (Command, bool) {
	m := u.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return Command{}, false
	}
	cmd := Command{ChatID: m.Chat.ID, Text: m.Text}
	if m.From != nil {
		cmd.UserID = m.From.ID
		cmd.Username = m.From.UserName
	}
	return cmd, true
}

// HandleUpdate routes a Telegram update to HandleCommand.
func (s *Service) HandleUpdate(ctx context.Context, u tgbotapi.Update) error {
	cmd, ok := CommandFromUpdate(u)
	if !ok {
		slog.Debug(config.MsgCommandIgnored,
			config.LogKeyComponent, config.CompBot,
			config.LogKeyUpdateID, u.UpdateID,
		)
		return nil
	}
	return s.HandleCommand(ctx, cmd)
}
