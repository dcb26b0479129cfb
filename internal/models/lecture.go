package models

import "github.com/hyowon-dev/sugang-api/internal/timetable"

// Weekday enumerates the days lectures are scheduled on.
type Weekday string

const (
	WeekdayMonday    Weekday = "MON"
	WeekdayTuesday   Weekday = "TUE"
	WeekdayWednesday Weekday = "WED"
	WeekdayThursday  Weekday = "THU"
	WeekdayFriday    Weekday = "FRI"
)

// Lecture is one schedulable course section. Lectures are created by term
// setup and never mutated while registration is open.
type Lecture struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	DepartmentCode string  `db:"department_code" json:"department_code"`
	ProfessorID    string  `db:"professor_id" json:"professor_id"`
	Day            Weekday `db:"day" json:"day"`
	StartPeriod    int     `db:"start_period" json:"start_period"`
	EndPeriod      int     `db:"end_period" json:"end_period"`
	Credit         int     `db:"credit" json:"credit"`
	Capacity       int     `db:"capacity" json:"capacity"`
	AcademicYear   string  `db:"academic_year" json:"academic_year"`
	Term           string  `db:"term" json:"term"`
}

// Slot returns the lecture's weekly time footprint.
func (l Lecture) Slot() timetable.Slot {
	return timetable.Slot{Day: string(l.Day), Start: l.StartPeriod, End: l.EndPeriod}
}

// LectureDetail enriches Lecture with lookup names and live occupancy.
type LectureDetail struct {
	Lecture
	DepartmentName string `db:"department_name" json:"department_name"`
	ProfessorName  string `db:"professor_name" json:"professor_name"`
	Occupied       int    `db:"occupied" json:"occupied"`
	Full           bool   `db:"-" json:"full"`
}

// LectureFilter provides catalog search criteria.
type LectureFilter struct {
	DepartmentCode string
	ProfessorName  string
	Name           string
	AcademicYear   string
	Term           string
}
