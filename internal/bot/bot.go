// Package bot delivers salary countdowns: replies to the /when_salary
// command and pushes one daily notification per calendar day.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/engine"
	"github.com/ivancheban/salary-bot/internal/message"
	"github.com/ivancheban/salary-bot/internal/state"
)

// Sender delivers a text message to a chat.
// This interface allows for mocking in tests and decoupling from the chat platform.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Command is an incoming chat message.
type Command struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// IsSalaryCommand reports whether text is exactly the salary command,
// optionally addressed to botName ("/when_salary@name").
func IsSalaryCommand(text, botName string) bool {
	if text == config.SalaryCommand {
		return true
	}
	cmd, mention, ok := strings.Cut(text, config.CommandMentionSep)
	return ok && botName != "" && cmd == config.SalaryCommand && mention == botName
}

// NotifyResult tells what NotifyDaily did.
type NotifyResult int

const (
	NotifySent NotifyResult = iota
	NotifySkipped
)

// Options tunes a Service. Zero values select defaults.
type Options struct {
	ChatID   int64
	BotName  string
	Cooldown time.Duration
	Clock    engine.Clock
}

// Service wires the resolver and the renderer to a chat.
type Service struct {
	resolver *engine.Resolver
	renderer *message.Renderer
	store    state.Store
	sender   Sender

	chatID   int64
	botName  string
	cooldown time.Duration
	clock    engine.Clock

	// notifyMu serializes NotifyDaily so that concurrent triggers send once.
	notifyMu sync.Mutex
}

// NewService creates a delivery service.
func NewService(resolver *engine.Resolver, renderer *message.Renderer, store state.Store, sender Sender, opts Options) *Service {
	if opts.ChatID == 0 {
		opts.ChatID = config.DefaultChatID
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = config.DefaultCooldown
	}
	if opts.Clock == nil {
		opts.Clock = engine.RealClock{Location: resolver.Location()}
	}
	return &Service{
		resolver: resolver,
		renderer: renderer,
		store:    store,
		sender:   sender,
		chatID:   opts.ChatID,
		botName:  opts.BotName,
		cooldown: opts.Cooldown,
		clock:    opts.Clock,
	}
}

// SetBotName sets the name accepted after "@" in addressed commands.
func (s *Service) SetBotName(name string) {
	s.botName = name
}

// Next resolves the next salary date and its countdown text relative to
// the service clock.
func (s *Service) Next() (engine.SalaryDate, string, error) {
	now := s.clock.Now()
	sd, err := s.resolver.Next(now)
	if err != nil {
		return engine.SalaryDate{}, "", err
	}
	return sd, s.renderer.Countdown(now, sd.At), nil
}

// HandleCommand answers the salary command. Other messages and commands
// from a user inside the cooldown window are ignored. A resolution failure
// is answered with an apology and also returned.
func (s *Service) HandleCommand(ctx context.Context, cmd Command) error {
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompBot),
		slog.Int64(config.LogKeyUser, cmd.UserID),
		slog.Int64(config.LogKeyChat, cmd.ChatID),
	)

	if !IsSalaryCommand(cmd.Text, s.botName) {
		log.Debug(config.MsgCommandIgnored)
		return nil
	}

	now := s.clock.Now()
	ok, err := s.store.TouchCommand(ctx, cmd.UserID, now, s.cooldown)
	if err != nil {
		return err
	}
	if !ok {
		log.Info(config.MsgCooldown)
		return nil
	}
	log.Info(config.MsgCommandReceived, slog.String(config.LogKeyUsername, cmd.Username))

	sd, err := s.resolver.Next(now)
	if err != nil {
		log.Error(config.ErrResolve, slog.Any(config.LogKeyError, err))
		if sendErr := s.sender.Send(ctx, cmd.ChatID, s.renderer.ErrorReply()); sendErr != nil {
			log.Error(config.ErrSend, slog.Any(config.LogKeyError, sendErr))
		}
		return fmt.Errorf("%s: %w", config.ErrResolve, err)
	}
	logResolved(log, sd)

	if err := s.sender.Send(ctx, cmd.ChatID, s.renderer.Countdown(now, sd.At)); err != nil {
		return err
	}
	log.Info(config.MsgReplySent)
	return nil
}

// NotifyDaily sends the countdown to the configured chat at most once per
// calendar day in the resolver's zone. The day is recorded only after a
// successful send, so a failed attempt can be retried.
func (s *Service) NotifyDaily(ctx context.Context) (NotifyResult, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	now := s.clock.Now().In(s.resolver.Location())
	today := now.Format(config.DateLayout)

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompBot),
		slog.Int64(config.LogKeyChat, s.chatID),
		slog.String(config.LogKeyDay, today),
	)

	last, err := s.store.LastNotified(ctx)
	if err != nil {
		return NotifySkipped, err
	}
	if last == today {
		log.Info(config.MsgNotifySkipped)
		return NotifySkipped, nil
	}
	log.Info(config.MsgNotifySending, slog.String(config.LogKeyLastDay, last))

	sd, err := s.resolver.Next(now)
	if err != nil {
		return NotifySkipped, fmt.Errorf("%s: %w", config.ErrResolve, err)
	}
	logResolved(log, sd)

	if err := s.sender.Send(ctx, s.chatID, s.renderer.Countdown(now, sd.At)); err != nil {
		return NotifySkipped, err
	}

	if err := s.store.SetLastNotified(ctx, today); err != nil {
		log.Warn(config.ErrStoreQuery, slog.Any(config.LogKeyError, err))
	}
	log.Info(config.MsgNotifySent)
	return NotifySent, nil
}

func logResolved(log *slog.Logger, sd engine.SalaryDate) {
	log.Debug(config.MsgSalaryResolved,
		slog.String(config.LogKeyDate, sd.At.Format(config.DateTimeLayout)),
		slog.String(config.LogKeyTarget, sd.Target.Format(config.DateLayout)),
		slog.Int(config.LogKeyShift, sd.Shift),
		slog.Bool(config.LogKeyOverride, sd.Override),
	)
}
