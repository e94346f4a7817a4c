package state_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivancheban/salary-bot/internal/state"
)

// stores runs each test against every implementation.
func stores(t *testing.T) map[string]state.Store {
	t.Helper()
	sq, err := state.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]state.Store{
		"Memory": state.NewMemory(),
		"SQLite": sq,
	}
}

func TestStore_LastNotified(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			day, err := s.LastNotified(ctx)
			require.NoError(t, err)
			assert.Empty(t, day)

			require.NoError(t, s.SetLastNotified(ctx, "2024-06-05"))
			require.NoError(t, s.SetLastNotified(ctx, "2024-06-06"))

			day, err = s.LastNotified(ctx)
			require.NoError(t, err)
			assert.Equal(t, "2024-06-06", day)
		})
	}
}

func TestStore_TouchCommand(t *testing.T) {
	ctx := context.Background()
	cooldown := 5 * time.Second
	t0 := time.Date(2024, time.June, 5, 9, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.TouchCommand(ctx, 42, t0, cooldown)
			require.NoError(t, err)
			assert.True(t, ok, "first command is accepted")

			ok, err = s.TouchCommand(ctx, 42, t0.Add(4*time.Second), cooldown)
			require.NoError(t, err)
			assert.False(t, ok, "inside the cooldown")

			ok, err = s.TouchCommand(ctx, 7, t0.Add(4*time.Second), cooldown)
			require.NoError(t, err)
			assert.True(t, ok, "cooldown is per user")

			// The rejected command did not move the window.
			ok, err = s.TouchCommand(ctx, 42, t0.Add(5*time.Second), cooldown)
			require.NoError(t, err)
			assert.True(t, ok, "cooldown elapsed")

			ok, err = s.TouchCommand(ctx, 42, t0.Add(9*time.Second), cooldown)
			require.NoError(t, err)
			assert.False(t, ok, "window restarts at the accepted command")
		})
	}
}

// TestSQLite_Durable reopens a database file.
func TestSQLite_Durable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := state.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SetLastNotified(ctx, "2024-06-05"))
	require.NoError(t, s.Close())

	s, err = state.NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	day, err := s.LastNotified(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-05", day)
}

func TestSQLite_OpenError(t *testing.T) {
	_, err := state.NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "state.db"))
	assert.Error(t, err)
}
