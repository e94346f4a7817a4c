package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ivancheban/salary-bot/internal/config"
)

var (
	// ErrUnresolvable means no candidate exists within the lookahead window,
	// which points at a schedule configuration bug (e.g. no payments).
	ErrUnresolvable = errors.New(config.ErrUnresolvable)

	// ErrAdjustmentExhausted means backward adjustment hit its bound,
	// which points at a holiday table that blocks a whole week.
	ErrAdjustmentExhausted = errors.New(config.ErrAdjustmentExhausted)
)

// AdjustmentError carries the candidate that could not be settled on a
// working day. It matches ErrAdjustmentExhausted with errors.Is.
type AdjustmentError struct {
	Target time.Time
	Steps  int
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("%s: target %s, %d steps", config.ErrAdjustmentExhausted, e.Target.Format(config.DateLayout), e.Steps)
}

func (e *AdjustmentError) Unwrap() error {
	return ErrAdjustmentExhausted
}
