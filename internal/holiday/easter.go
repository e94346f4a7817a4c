package holiday

import "time"

// OrthodoxEaster returns Easter Sunday as observed by the Eastern Orthodox
// churches for the given year, expressed as a proleptic Gregorian date at
// midnight UTC.
//
// The Julian-calendar date is found with the Meeus Julian algorithm and then
// moved onto the Gregorian calendar by the century correction (13 days for
// 1900-2099). Floor division keeps the function total for any year.
func OrthodoxEaster(year int) time.Time {
	a := floorMod(year, 4)
	b := floorMod(year, 7)
	c := floorMod(year, 19)
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7
	f := d + e + 114

	month := f / 31
	day := f%31 + 1

	shift := floorDiv(year, 100) - floorDiv(year, 400) - 2

	// time.Date normalizes day overflow into May.
	return time.Date(year, time.Month(month), day+shift, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
