package export

import (
	"fmt"
	"io"

	"github.com/prosemku/backend/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Prosem"

// WriteWorkbook renders the program as an xlsx workbook: one row per
// sub-topic with the 6x5 week grid marked by check marks.
func WriteWorkbook(w io.Writer, p Program) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheetName, "A1", "PROGRAM SEMESTER")
	f.SetCellValue(sheetName, "A2", p.SchoolName)
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Mata Pelajaran: %s", p.Subject))
	f.SetCellValue(sheetName, "A4", fmt.Sprintf("Kelas: %s", p.ClassName))
	f.SetCellValue(sheetName, "A5", fmt.Sprintf("Semester: %s", p.SemesterLabel))
	if p.Assessment.DateRange != "" {
		f.SetCellValue(sheetName, "A6", fmt.Sprintf("%s: %s", p.Assessment.Label, p.Assessment.DateRange))
	}

	// Header: No | Materi | Lingkup Materi | JP | 6 months x 5 weeks | Keterangan
	const headerRow = 8
	f.SetCellValue(sheetName, cell(0, headerRow), "No")
	f.SetCellValue(sheetName, cell(1, headerRow), "Materi")
	f.SetCellValue(sheetName, cell(2, headerRow), "Lingkup Materi")
	f.SetCellValue(sheetName, cell(3, headerRow), "JP")
	col := 4
	for m := 0; m < schedule.GridMonths; m++ {
		start, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		end, _ := excelize.CoordinatesToCellName(col+schedule.GridWeeks, headerRow)
		f.MergeCell(sheetName, start, end)
		f.SetCellValue(sheetName, start, p.Months[m])
		for wk := 0; wk < schedule.GridWeeks; wk++ {
			f.SetCellValue(sheetName, cell(col+wk, headerRow+1), wk+1)
		}
		col += schedule.GridWeeks
	}
	f.SetCellValue(sheetName, cell(col, headerRow), "Keterangan")

	row := headerRow + 2
	for i, r := range p.Rows {
		f.SetCellValue(sheetName, cell(0, row), i+1)
		f.SetCellValue(sheetName, cell(1, row), r.TopicName)
		f.SetCellValue(sheetName, cell(2, row), r.SubTopicName)
		f.SetCellValue(sheetName, cell(3, row), r.Units)
		col = 4
		for m := 1; m <= schedule.GridMonths; m++ {
			for wk := 1; wk <= schedule.GridWeeks; wk++ {
				if r.Grid.Active(schedule.SlotKey{Month: m, Week: wk}) {
					f.SetCellValue(sheetName, cell(col, row), "✓")
				}
				col++
			}
		}
		f.SetCellValue(sheetName, cell(col, row), r.Notes)
		row++
	}

	return f.Write(w)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
