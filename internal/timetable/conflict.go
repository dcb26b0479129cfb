package timetable

// Entry is one registration as seen by the conflict detector and the
// credit ledger.
type Entry struct {
	LectureID   string
	LectureName string
	Slot        Slot
	Credit      int
}

// FindConflict returns the first current entry whose slot overlaps the
// candidate. One conflict is sufficient to deny, so the search
// short-circuits.
func FindConflict(candidate Slot, current []Entry) (Entry, bool) {
	for _, entry := range current {
		if candidate.Overlaps(entry.Slot) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Contains reports whether the student already holds the given lecture.
func Contains(current []Entry, lectureID string) bool {
	for _, entry := range current {
		if entry.LectureID == lectureID {
			return true
		}
	}
	return false
}

// TotalCredits sums the credit values of the current entries.
func TotalCredits(current []Entry) int {
	total := 0
	for _, entry := range current {
		total += entry.Credit
	}
	return total
}
