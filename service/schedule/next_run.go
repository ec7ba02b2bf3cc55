package schedule

import "time"

// NextRun returns the next weekly occurrence of day at hour:minute in now's
// location. Today qualifies only while that time is strictly after now,
// otherwise the result is one to seven days ahead.
func NextRun(now time.Time, day time.Weekday, hour, minute int) time.Time {
	ahead := (int(day) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+ahead, hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(now.Year(), now.Month(), now.Day()+ahead+7, hour, minute, 0, 0, now.Location())
	}
	return candidate
}
