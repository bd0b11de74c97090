package export

import (
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/prosemku/backend/internal/schedule"
)

// WritePDF renders the program as a landscape A4 table.
func WritePDF(w io.Writer, p Program) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "PROGRAM SEMESTER", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, p.SchoolName, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Mata Pelajaran: "+p.Subject+"   Kelas: "+p.ClassName+"   Semester: "+p.SemesterLabel, "", 1, "C", false, 0, "")
	if p.Assessment.DateRange != "" {
		pdf.CellFormat(0, 6, p.Assessment.Label+": "+p.Assessment.DateRange, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	const (
		noW    = 8.0
		topicW = 42.0
		subW   = 58.0
		jpW    = 10.0
		weekW  = 4.4
		notesW = 40.0
	)

	// Month header row, then week numbers.
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(noW, 10, "No", "1", 0, "C", false, 0, "")
	pdf.CellFormat(topicW, 10, "Materi", "1", 0, "C", false, 0, "")
	pdf.CellFormat(subW, 10, "Lingkup Materi", "1", 0, "C", false, 0, "")
	pdf.CellFormat(jpW, 10, "JP", "1", 0, "C", false, 0, "")
	x, y := pdf.GetXY()
	for m := 0; m < schedule.GridMonths; m++ {
		pdf.CellFormat(weekW*schedule.GridWeeks, 5, p.Months[m], "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(notesW, 10, "Keterangan", "1", 1, "C", false, 0, "")
	pdf.SetXY(x, y+5)
	for m := 0; m < schedule.GridMonths; m++ {
		for wk := 1; wk <= schedule.GridWeeks; wk++ {
			pdf.CellFormat(weekW, 5, strconv.Itoa(wk), "1", 0, "C", false, 0, "")
		}
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 8)
	for i, r := range p.Rows {
		style := ""
		if r.Summative {
			style = "I"
		}
		pdf.SetFont("Arial", style, 8)
		pdf.CellFormat(noW, 6, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(topicW, 6, r.TopicName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(subW, 6, r.SubTopicName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(jpW, 6, strconv.Itoa(r.Units), "1", 0, "C", false, 0, "")
		for m := 1; m <= schedule.GridMonths; m++ {
			for wk := 1; wk <= schedule.GridWeeks; wk++ {
				mark := ""
				if r.Grid.Active(schedule.SlotKey{Month: m, Week: wk}) {
					mark = "v"
				}
				pdf.CellFormat(weekW, 6, mark, "1", 0, "C", false, 0, "")
			}
		}
		pdf.CellFormat(notesW, 6, r.Notes, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(140, 5, "Mengetahui,", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Guru Kelas,", "", 1, "L", false, 0, "")
	pdf.CellFormat(140, 5, "Kepala Sekolah", "", 0, "L", false, 0, "")
	pdf.Ln(18)
	pdf.SetFont("Arial", "BU", 9)
	pdf.CellFormat(140, 5, p.PrincipalName, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, p.TeacherName, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(140, 5, "NIP. "+p.PrincipalNIP, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "NIP. "+p.TeacherNIP, "", 1, "L", false, 0, "")

	return pdf.Output(w)
}
