package models

import (
	"time"

	"github.com/hyowon-dev/sugang-api/internal/timetable"
)

// Registration records that a student holds a seat in a lecture. It is a
// fact with no mutable state: created on admit, deleted on drop.
type Registration struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	LectureID string    `db:"lecture_id" json:"lecture_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RegistrationDetail joins a registration with its lecture's schedule data.
type RegistrationDetail struct {
	Registration
	LectureName    string  `db:"lecture_name" json:"lecture_name"`
	DepartmentName string  `db:"department_name" json:"department_name"`
	ProfessorName  string  `db:"professor_name" json:"professor_name"`
	Day            Weekday `db:"day" json:"day"`
	StartPeriod    int     `db:"start_period" json:"start_period"`
	EndPeriod      int     `db:"end_period" json:"end_period"`
	Credit         int     `db:"credit" json:"credit"`
}

// Slot returns the registered lecture's weekly time footprint.
func (r RegistrationDetail) Slot() timetable.Slot {
	return timetable.Slot{Day: string(r.Day), Start: r.StartPeriod, End: r.EndPeriod}
}

// RegistrationSummary is the caller-facing view of a student's load.
type RegistrationSummary struct {
	TotalCredits  int                  `json:"total_credits"`
	Registrations []RegistrationDetail `json:"registrations"`
}
