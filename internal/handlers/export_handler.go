package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prosemku/backend/internal/export"
	"github.com/prosemku/backend/internal/models"
	"github.com/prosemku/backend/internal/schedule"
	"github.com/prosemku/backend/internal/services"
	"gorm.io/gorm"
)

type ExportHandler struct {
	db  *gorm.DB
	svc *services.ScheduleService
}

func NewExportHandler(db *gorm.DB, svc *services.ScheduleService) *ExportHandler {
	return &ExportHandler{db: db, svc: svc}
}

// Excel writes the semester program as an .xlsx workbook.
// @Summary Download the semester program as Excel
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Router /export/excel [get]
func (h *ExportHandler) Excel(c *gin.Context) {
	program, name, ok := h.buildProgram(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, *program); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// PDF writes the semester program as a landscape A4 PDF.
// @Summary Download the semester program as PDF
// @Tags export
// @Produce application/pdf
// @Security BearerAuth
// @Router /export/pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	program, name, ok := h.buildProgram(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, *program); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// buildProgram assembles the printable program for one class/subject/semester
// scope. On failure it writes the error response and returns ok=false.
func (h *ExportHandler) buildProgram(c *gin.Context) (*export.Program, string, bool) {
	schoolID, ok := tenantSchoolID(c)
	if !ok {
		return nil, "", false
	}

	classID, err := uuid.Parse(c.Query("class_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid class_id"})
		return nil, "", false
	}
	subject := c.Query("subject")
	year, _ := strconv.Atoi(c.Query("year"))
	semester := schedule.Semester(c.Query("semester"))
	if subject == "" || year == 0 || (semester != schedule.SemesterGanjil && semester != schedule.SemesterGenap) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject, year and semester are required"})
		return nil, "", false
	}

	var school models.School
	if err := h.db.First(&school, "id = ?", schoolID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return nil, "", false
	}

	var class models.Class
	if err := h.db.Preload("Teacher").Where("id = ? AND school_id = ?", classID, schoolID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return nil, "", false
	}

	var topics []models.Topic
	if err := h.db.Preload("SubTopics", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("school_id = ? AND class_id = ? AND subject = ? AND year = ? AND semester = ?",
			schoolID, classID, subject, year, semester).
		Order("position").
		Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, "", false
	}
	if len(topics) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No topics planned for this scope"})
		return nil, "", false
	}

	var assignments []models.SubTopicAssignment
	if err := h.db.Where("school_id = ? AND year = ? AND semester = ? AND topic_id IN ?",
		schoolID, year, semester, modelTopicIDs(topics)).
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, "", false
	}
	bySubTopic := make(map[uuid.UUID]models.SubTopicAssignment, len(assignments))
	for _, a := range assignments {
		bySubTopic[a.SubTopicID] = a
	}

	window := schedule.Window{StartYear: year, Semester: semester}
	assessment, err := h.svc.AssessmentWindow(schoolID, year, semester)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, "", false
	}

	program := export.Program{
		SchoolName:    school.Name,
		PrincipalName: school.PrincipalName,
		PrincipalNIP:  school.PrincipalNIP,
		Subject:       subject,
		ClassName:     class.Name,
		SemesterLabel: window.Label(),
		Months:        export.MonthNames(semester),
		Assessment:    assessment,
	}
	if class.Teacher != nil {
		program.TeacherName = class.Teacher.FullName
		program.TeacherNIP = class.Teacher.NIP
	}

	for _, topic := range topics {
		for _, st := range topic.SubTopics {
			row := export.ProgramRow{
				TopicName:    topic.Name,
				SubTopicName: st.Name,
				Summative:    st.IsSummative,
			}
			if a, found := bySubTopic[st.ID]; found {
				row.Units = a.Units
				row.Notes = a.NotesText
				row.Grid = gridFromJSON(a.SlotGrid)
			}
			program.Rows = append(program.Rows, row)
		}
	}

	name := fmt.Sprintf("prosem-%s-%s-%d-%s", slugify(class.Name), slugify(subject), year, semester)
	return &program, name, true
}

// gridFromJSON rebuilds the in-memory grid from the persisted
// {"active":[{month,week},...]} shape. Unknown shapes yield an empty grid.
func gridFromJSON(data models.JSONB) schedule.SlotGrid {
	var grid schedule.SlotGrid
	active, _ := data["active"].([]interface{})
	for _, raw := range active {
		slot, _ := raw.(map[string]interface{})
		month, _ := slot["month"].(float64)
		week, _ := slot["week"].(float64)
		key := schedule.SlotKey{Month: int(month), Week: int(week)}
		if key.Month >= 1 && key.Month <= schedule.GridMonths && key.Week >= 1 && key.Week <= schedule.GridWeeks {
			grid.Set(key)
		}
	}
	return grid
}

func modelTopicIDs(topics []models.Topic) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}
	return ids
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
