package holiday

import (
	"fmt"
	"time"
)

// Kind distinguishes fixed-date holidays from Easter-relative ones.
type Kind int

const (
	// Fixed holidays fall on the same month and day every year.
	Fixed Kind = iota
	// Movable holidays fall a number of days from Orthodox Easter.
	Movable
)

// Rule is one entry of a jurisdiction's holiday table.
type Rule struct {
	Name   string
	Kind   Kind
	Month  time.Month // Fixed only
	Day    int        // Fixed only
	Offset int        // Movable only, days from Easter Sunday
}

// FixedRule builds a rule for a holiday on the given month and day.
func FixedRule(name string, month time.Month, day int) Rule {
	return Rule{Name: name, Kind: Fixed, Month: month, Day: day}
}

// MovableRule builds a rule for a holiday offset days from Orthodox Easter.
func MovableRule(name string, offset int) Rule {
	return Rule{Name: name, Kind: Movable, Offset: offset}
}

func (r Rule) String() string {
	if r.Kind == Movable {
		return fmt.Sprintf("%s (Easter%+d)", r.Name, r.Offset)
	}
	return fmt.Sprintf("%s (%s %d)", r.Name, r.Month, r.Day)
}
