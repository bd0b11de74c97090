// Package export renders the semester program as downloadable documents.
package export

import (
	"github.com/prosemku/backend/internal/schedule"
)

// ProgramRow is one sub-topic line of the printed program.
type ProgramRow struct {
	TopicName    string
	SubTopicName string
	Units        int
	Grid         schedule.SlotGrid
	Notes        string
	Summative    bool
}

// Program is everything the printed semester program shows.
type Program struct {
	SchoolName    string
	PrincipalName string
	PrincipalNIP  string
	TeacherName   string
	TeacherNIP    string
	Subject       string
	ClassName     string
	SemesterLabel string
	Months        []string
	Assessment    schedule.AssessmentWindow
	Rows          []ProgramRow
}

// MonthNames returns the six month headers of a semester window.
func MonthNames(sem schedule.Semester) []string {
	if sem == schedule.SemesterGenap {
		return []string{"Januari", "Februari", "Maret", "April", "Mei", "Juni"}
	}
	return []string{"Juli", "Agustus", "September", "Oktober", "November", "Desember"}
}
