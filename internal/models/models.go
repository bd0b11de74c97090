package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB custom type for JSON fields
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Base model with UUID
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// School represents an elementary school (SD)
type School struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	NPSN          string `gorm:"type:varchar(20)" json:"npsn"`
	Address       string `gorm:"type:text" json:"address"`
	Province      string `gorm:"type:varchar(100)" json:"province"`
	Regency       string `gorm:"type:varchar(100)" json:"regency"`
	ContactEmail  string `gorm:"type:varchar(255)" json:"contact_email"`
	Phone         string `gorm:"type:varchar(50)" json:"phone"`
	LogoURL       string `gorm:"type:varchar(500)" json:"logo_url"`
	PrincipalName string `gorm:"type:varchar(255)" json:"principal_name"`
	PrincipalNIP  string `gorm:"type:varchar(50)" json:"principal_nip"`
	Config        JSONB  `gorm:"type:json" json:"config"`
}

// User represents system users (admin/teacher). Teachers self-register and
// stay unapproved until an admin lets them in.
type User struct {
	BaseModel
	SchoolID     *uuid.UUID `gorm:"type:char(36);index" json:"school_id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	NIP          string     `gorm:"type:varchar(50)" json:"nip"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	IsApproved   bool       `gorm:"default:false;index" json:"is_approved"`
	Meta         JSONB      `gorm:"type:json" json:"meta"`
	School       *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// Class represents one rombongan belajar, e.g. "Kelas 4A"
type Class struct {
	BaseModel
	SchoolID  uuid.UUID  `gorm:"type:char(36);not null;index:idx_class_school_year" json:"school_id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Grade     int        `gorm:"not null" json:"grade"`
	TeacherID *uuid.UUID `gorm:"type:char(36);index" json:"teacher_id"`
	Year      int        `gorm:"not null;index:idx_class_school_year" json:"year"`
	School    *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Teacher   *User      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// Student represents a roster entry
type Student struct {
	BaseModel
	SchoolID uuid.UUID  `gorm:"type:char(36);not null;index" json:"school_id"`
	ClassID  *uuid.UUID `gorm:"type:char(36);index" json:"class_id"`
	NISN     string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_nisn_school" json:"nisn"`
	FullName string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Gender   string     `gorm:"type:varchar(10)" json:"gender"`
	School   *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Class    *Class     `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

// CalendarEvent is a date that is not an ordinary teaching day: a holiday,
// an assessment period, or another non-instructional event.
type CalendarEvent struct {
	BaseModel
	SchoolID    uuid.UUID `gorm:"type:char(36);not null;index:idx_calendar_school_year" json:"school_id"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	Category    string    `gorm:"type:varchar(20);not null" json:"category"`
	Year        int       `gorm:"not null;index:idx_calendar_school_year" json:"year"`
	School      *School   `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// WeeklySchedule maps the six instructional weekdays to unit counts for one
// subject of one class. Sunday is never taught.
type WeeklySchedule struct {
	BaseModel
	SchoolID  uuid.UUID `gorm:"type:char(36);not null;index" json:"school_id"`
	ClassID   uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_sched_class_subject_year" json:"class_id"`
	Subject   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_sched_class_subject_year" json:"subject"`
	Year      int       `gorm:"not null;uniqueIndex:idx_sched_class_subject_year" json:"year"`
	Monday    int       `gorm:"default:0" json:"monday"`
	Tuesday   int       `gorm:"default:0" json:"tuesday"`
	Wednesday int       `gorm:"default:0" json:"wednesday"`
	Thursday  int       `gorm:"default:0" json:"thursday"`
	Friday    int       `gorm:"default:0" json:"friday"`
	Saturday  int       `gorm:"default:0" json:"saturday"`
	Class     *Class    `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

// Topic is a curriculum unit (Materi) of one subject in one semester
type Topic struct {
	BaseModel
	SchoolID   uuid.UUID  `gorm:"type:char(36);not null;index" json:"school_id"`
	ClassID    uuid.UUID  `gorm:"type:char(36);not null;index:idx_topic_scope" json:"class_id"`
	Subject    string     `gorm:"type:varchar(100);not null;index:idx_topic_scope" json:"subject"`
	Year       int        `gorm:"not null;index:idx_topic_scope" json:"year"`
	Semester   string     `gorm:"type:varchar(10);not null;index:idx_topic_scope" json:"semester"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	TotalUnits int        `gorm:"not null" json:"total_units"`
	Position   int        `gorm:"not null" json:"position"`
	SubTopics  []SubTopic `gorm:"foreignKey:TopicID" json:"sub_topics,omitempty"`
}

// SubTopic is a gradeable slice of a Topic (Lingkup Materi)
type SubTopic struct {
	BaseModel
	TopicID     uuid.UUID `gorm:"type:char(36);not null;index" json:"topic_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	TargetUnits int       `gorm:"not null" json:"target_units"`
	IsSummative bool      `gorm:"default:false" json:"is_summative"`
	Position    int       `gorm:"not null" json:"position"`
}

// SubTopicAssignment stores the result of one scheduling run for one
// sub-topic: allocated units, the 6x5 slot-activation grid, and the
// free-text date notes. Overwritten wholesale on each run; hand-editable
// afterward.
type SubTopicAssignment struct {
	BaseModel
	SchoolID   uuid.UUID `gorm:"type:char(36);not null;index" json:"school_id"`
	TopicID    uuid.UUID `gorm:"type:char(36);not null;index" json:"topic_id"`
	SubTopicID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_assignment_scope" json:"sub_topic_id"`
	Year       int       `gorm:"not null;uniqueIndex:idx_assignment_scope" json:"year"`
	Semester   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_assignment_scope" json:"semester"`
	Units      int       `gorm:"not null" json:"units"`
	SlotGrid   JSONB     `gorm:"type:json" json:"slot_grid"`
	NotesText  string    `gorm:"type:text" json:"notes_text"`
	Source     string    `gorm:"type:varchar(20);default:'matcher'" json:"source"`
	SubTopic   *SubTopic `gorm:"foreignKey:SubTopicID" json:"sub_topic,omitempty"`
}

// ScheduleRun tracks one scheduling run per subject/class/semester with its
// summary (sessions found, unfilled sub-topics, AI outcome).
type ScheduleRun struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	SchoolID   uuid.UUID  `gorm:"type:char(36);not null;index" json:"school_id"`
	ClassID    uuid.UUID  `gorm:"type:char(36);not null;index" json:"class_id"`
	Subject    string     `gorm:"type:varchar(100);not null" json:"subject"`
	Year       int        `gorm:"not null" json:"year"`
	Semester   string     `gorm:"type:varchar(10);not null" json:"semester"`
	Status     string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Summary    JSONB      `gorm:"type:json" json:"summary"`
	RunBy      uuid.UUID  `gorm:"type:char(36);not null" json:"run_by"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (r *ScheduleRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AuditLog tracks all data changes
type AuditLog struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ActorUserID  uuid.UUID `gorm:"type:char(36);index" json:"actor_user_id"`
	Action       string    `gorm:"type:varchar(50);not null" json:"action"`
	ResourceType string    `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   uuid.UUID `gorm:"type:char(36);index" json:"resource_id"`
	Before       JSONB     `gorm:"type:json" json:"before"`
	After        JSONB     `gorm:"type:json" json:"after"`
	Timestamp    time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	IP           string    `gorm:"type:varchar(45)" json:"ip"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores refresh tokens for revocation
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index" json:"user_id"`
	Token     string    `gorm:"type:varchar(500);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Revoked   bool      `gorm:"default:false;index" json:"revoked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
