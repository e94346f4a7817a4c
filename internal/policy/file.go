package policy

// File is the YAML representation of a jurisdiction policy.
type File struct {
	Name           string            `yaml:"name"`
	Zone           string            `yaml:"zone"`
	PayTime        string            `yaml:"pay_time"`
	Weekend        []string          `yaml:"weekend"`
	MaxAdjustments int               `yaml:"max_adjustments"`
	LookaheadYears int               `yaml:"lookahead_years"`
	Holidays       []HolidayEntry    `yaml:"holidays"`
	Payments       []PaymentEntry    `yaml:"payments"`
	Reschedules    []RescheduleEntry `yaml:"reschedules"`
	Overrides      []OverrideEntry   `yaml:"overrides"`
}

// HolidayEntry is either a fixed date ("Jan-07") or an offset in days from
// Orthodox Easter Sunday.
type HolidayEntry struct {
	Name         string `yaml:"name"`
	Date         string `yaml:"date,omitempty"`
	EasterOffset *int   `yaml:"easter_offset,omitempty"`
}

// PaymentEntry names a month and either a day number or "last".
type PaymentEntry struct {
	Month string `yaml:"month"`
	Day   string `yaml:"day"`
}

type RescheduleEntry struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type OverrideEntry struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Target string `yaml:"target"`
}
