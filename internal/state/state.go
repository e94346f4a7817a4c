/*
Package state keeps the little state the bot needs between requests.

KEYS:

	last-notified day: the zone-local calendar day (YYYY-MM-DD) of the last
	                   successful daily notification.
	command times:     the last accepted /when_salary command per user,
	                   for the per-user cooldown.

IMPLEMENTATIONS:

	Memory: process-local, lost on restart.
	SQLite: durable, shared by every process pointing at the same file.
*/
package state

import (
	"context"
	"sync"
	"time"
)

// Store is the injected state used by delivery.
type Store interface {
	// LastNotified returns the day of the last successful notification,
	// or "" if none was recorded.
	LastNotified(ctx context.Context) (string, error)
	SetLastNotified(ctx context.Context, day string) error

	// TouchCommand records a command from userID at now unless the
	// previous accepted command is less than cooldown old. It reports
	// whether the command was accepted. Rejected commands are not recorded.
	TouchCommand(ctx context.Context, userID int64, now time.Time, cooldown time.Duration) (bool, error)

	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu           sync.Mutex
	lastNotified string
	commands     map[int64]time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{commands: make(map[int64]time.Time)}
}

func (m *Memory) LastNotified(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastNotified, nil
}

func (m *Memory) SetLastNotified(_ context.Context, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNotified = day
	return nil
}

func (m *Memory) TouchCommand(_ context.Context, userID int64, now time.Time, cooldown time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.commands[userID]; ok && now.Sub(last) < cooldown {
		return false, nil
	}
	m.commands[userID] = now
	return true, nil
}

func (m *Memory) Close() error { return nil }
