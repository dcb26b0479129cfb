// Package timetable holds the pure scheduling rules of the admission
// engine: period-interval overlap, conflict search, and credit totals.
// Nothing here touches storage.
package timetable

// Slot is a lecture's weekly time footprint: the closed period interval
// [Start, End] on a given day. Start == End is a valid single-period slot.
type Slot struct {
	Day   string
	Start int
	End   int
}

// Overlaps reports whether two slots share at least one period on the
// same day.
func (s Slot) Overlaps(o Slot) bool {
	if s.Day != o.Day {
		return false
	}
	return s.Start <= o.End && o.Start <= s.End
}
