package reservation

import "time"

const dateLayout = "2006-01-02"

type Window struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// BookingWindow spans today through the same day three calendar months ahead.
// Month overflow normalises the way time.AddDate does (Nov 30 -> Mar 2).
func BookingWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc)
	return Window{
		Min: today.Format(dateLayout),
		Max: today.AddDate(0, 3, 0).Format(dateLayout),
	}
}

// Contains compares ISO dates lexically, which matches calendar order.
func (w Window) Contains(date string) bool {
	return date >= w.Min && date <= w.Max
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
