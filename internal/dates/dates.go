// Package dates normalizes deal dates to the business's civil timezone.
// Order windows are civil days: a deal that ends "June 3" accepts orders
// until 23:59:59 Eastern on June 3 regardless of the server's zone.
package dates

import "time"

// Eastern is the fixed civil timezone all deal dates are interpreted in.
var Eastern *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("dates: cannot load America/New_York: " + err.Error())
	}
	Eastern = loc
}

// StartOfDay returns 00:00:00 Eastern on the civil day containing t.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Eastern)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Eastern)
}

// EndOfDay returns 23:59:59 Eastern on the civil day containing t.
func EndOfDay(t time.Time) time.Time {
	t = t.In(Eastern)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, Eastern)
}
