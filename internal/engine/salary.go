package engine

import "time"

// SalaryDate is the outcome of one resolution.
type SalaryDate struct {
	// At is the adjusted payment date with the disbursement time attached.
	At time.Time
	// Target is the rule-generated candidate before weekend/holiday adjustment.
	Target time.Time
	// Shift is the number of days At was moved back from Target.
	Shift int
	// Override is true when a manual override window produced the target.
	Override bool
}

// Adjusted reports whether the payment was moved off its target day.
func (s SalaryDate) Adjusted() bool {
	return s.Shift > 0
}
