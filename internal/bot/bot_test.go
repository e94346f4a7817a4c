package bot_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ivancheban/salary-bot/internal/bot"
	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/engine"
	"github.com/ivancheban/salary-bot/internal/message"
	"github.com/ivancheban/salary-bot/internal/state"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockSender records outgoing messages using `testify/mock`.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentTime
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentTime = t
}

const chatID = int64(-100)

type fixture struct {
	svc    *bot.Service
	sender *MockSender
	clock  *MockClock
	store  state.Store
	loc    *time.Location
}

// newFixture pays on the 5th of every month at 12:10 in Kyiv, no holidays.
func newFixture(t *testing.T, s engine.Schedule) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)

	if s.Payments == nil {
		for m := time.January; m <= time.December; m++ {
			s.Payments = append(s.Payments, engine.Payment{Month: m, Day: 5})
		}
	}
	s.Location = loc

	f := &fixture{
		sender: new(MockSender),
		clock:  &MockClock{CurrentTime: time.Date(2024, time.June, 3, 9, 0, 0, 0, loc)},
		store:  state.NewMemory(),
		loc:    loc,
	}
	f.svc = bot.NewService(engine.NewResolver(s, nil), message.NewRenderer("en"), f.store, f.sender, bot.Options{
		ChatID:  chatID,
		BotName: "salary_bot",
		Clock:   f.clock,
	})
	return f
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestIsSalaryCommand(t *testing.T) {
	tests := []struct {
		text    string
		botName string
		want    bool
	}{
		{"/when_salary", "", true},
		{"/when_salary", "salary_bot", true},
		{"/when_salary@salary_bot", "salary_bot", true},
		{"/when_salary@other_bot", "salary_bot", false},
		{"/when_salary@salary_bot", "", false},
		{"/when_salary now", "salary_bot", false},
		{" /when_salary", "salary_bot", false},
		{"/start", "salary_bot", false},
		{"", "salary_bot", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, bot.IsSalaryCommand(tt.text, tt.botName))
		})
	}
}

func TestHandleCommand_Reply(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	f.sender.On("Send", mock.Anything, int64(42), config.FallbackTwoDaysLeft).Return(nil).Once()

	err := f.svc.HandleCommand(context.Background(), bot.Command{ChatID: 42, UserID: 1, Text: "/when_salary@salary_bot"})
	require.NoError(t, err)
	f.sender.AssertExpectations(t)
}

func TestHandleCommand_IgnoresOtherText(t *testing.T) {
	f := newFixture(t, engine.Schedule{})

	err := f.svc.HandleCommand(context.Background(), bot.Command{ChatID: 42, UserID: 1, Text: "hello"})
	require.NoError(t, err)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// TestHandleCommand_Cooldown drops a second command from the same user
// within five seconds but answers another user.
func TestHandleCommand_Cooldown(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	ctx := context.Background()
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.HandleCommand(ctx, bot.Command{ChatID: 42, UserID: 1, Text: "/when_salary"}))

	f.clock.Set(f.clock.Now().Add(3 * time.Second))
	require.NoError(t, f.svc.HandleCommand(ctx, bot.Command{ChatID: 42, UserID: 1, Text: "/when_salary"}))
	require.NoError(t, f.svc.HandleCommand(ctx, bot.Command{ChatID: 42, UserID: 2, Text: "/when_salary"}))

	f.clock.Set(f.clock.Now().Add(2 * time.Second))
	require.NoError(t, f.svc.HandleCommand(ctx, bot.Command{ChatID: 42, UserID: 1, Text: "/when_salary"}))

	f.sender.AssertNumberOfCalls(t, "Send", 3)
}

// TestHandleCommand_ResolveError answers with an apology.
func TestHandleCommand_ResolveError(t *testing.T) {
	f := newFixture(t, engine.Schedule{Payments: []engine.Payment{}})
	f.sender.On("Send", mock.Anything, int64(42), config.FallbackErrorReply).Return(nil).Once()

	err := f.svc.HandleCommand(context.Background(), bot.Command{ChatID: 42, UserID: 1, Text: "/when_salary"})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrUnresolvable)
	f.sender.AssertExpectations(t)
}

func TestHandleCommand_SendError(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	err := f.svc.HandleCommand(context.Background(), bot.Command{ChatID: 42, UserID: 1, Text: "/when_salary"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNotifyDaily_OncePerDay(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	ctx := context.Background()
	f.sender.On("Send", mock.Anything, chatID, mock.Anything).Return(nil)

	res, err := f.svc.NotifyDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, bot.NotifySent, res)

	f.clock.Set(time.Date(2024, time.June, 3, 23, 59, 0, 0, f.loc))
	res, err = f.svc.NotifyDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, bot.NotifySkipped, res)

	f.clock.Set(time.Date(2024, time.June, 4, 10, 0, 0, 0, f.loc))
	res, err = f.svc.NotifyDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, bot.NotifySent, res)

	f.sender.AssertNumberOfCalls(t, "Send", 2)

	day, err := f.store.LastNotified(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-04", day)
}

// TestNotifyDaily_DayInZone uses the policy zone for "today": 22:30 UTC on
// June 3 is already June 4 in Kyiv.
func TestNotifyDaily_DayInZone(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	ctx := context.Background()
	f.sender.On("Send", mock.Anything, chatID, mock.Anything).Return(nil)
	require.NoError(t, f.store.SetLastNotified(ctx, "2024-06-03"))

	f.clock.Set(time.Date(2024, time.June, 3, 22, 30, 0, 0, time.UTC))
	res, err := f.svc.NotifyDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, bot.NotifySent, res)
}

// TestNotifyDaily_FailureRetries leaves the marker unset after a failed send.
func TestNotifyDaily_FailureRetries(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	ctx := context.Background()
	f.sender.On("Send", mock.Anything, chatID, mock.Anything).Return(assert.AnError).Once()
	f.sender.On("Send", mock.Anything, chatID, mock.Anything).Return(nil).Once()

	_, err := f.svc.NotifyDaily(ctx)
	require.ErrorIs(t, err, assert.AnError)

	day, err := f.store.LastNotified(ctx)
	require.NoError(t, err)
	assert.Empty(t, day)

	res, err := f.svc.NotifyDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, bot.NotifySent, res)
	f.sender.AssertExpectations(t)
}

// TestNotifyDaily_Concurrent sends once when triggers race.
func TestNotifyDaily_Concurrent(t *testing.T) {
	f := newFixture(t, engine.Schedule{})
	f.sender.On("Send", mock.Anything, chatID, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.NotifyDaily(context.Background())
		}()
	}
	wg.Wait()

	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotifyDaily_ResolveError(t *testing.T) {
	f := newFixture(t, engine.Schedule{Payments: []engine.Payment{}})

	_, err := f.svc.NotifyDaily(context.Background())
	assert.ErrorIs(t, err, engine.ErrUnresolvable)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Next(t *testing.T) {
	f := newFixture(t, engine.Schedule{})

	sd, text, err := f.svc.Next()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-05", engine.DateOf(sd.At).String())
	assert.Equal(t, config.FallbackTwoDaysLeft, text)
}
