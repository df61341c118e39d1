package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account roles. Role is an explicit field on the account record; there are
// no hardcoded identity constants anywhere in the authorization path.
const (
	RolePlatformAdmin = "platform-admin"
	RoleSchoolAdmin   = "school-admin"
	RoleTeacher       = "teacher"
	RoleStudent       = "student"
)

// Fee term statuses.
const (
	FeeStatusPending = "pending"
	FeeStatusPaid    = "paid"
)

// ClassGraduate is the terminal class value; it has no outgoing promotion.
const ClassGraduate = "Graduate"

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

// Base model with UUID. No soft-delete column: deletes are hard, and the
// cascade paths rely on rows being really gone (unique emails and admission
// numbers must be reusable after a delete).
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// School represents one managed school. Admissions is the running counter
// that sources the next student's admission number; it only ever moves
// forward and is bumped inside the same transaction that creates the student.
type School struct {
	BaseModel
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	ShortName      string     `gorm:"type:varchar(10);not null;uniqueIndex" json:"short_name"`
	PrincipalName  string     `gorm:"type:varchar(255)" json:"principal_name"`
	PrincipalPhone string     `gorm:"type:varchar(20)" json:"principal_phone"`
	Address        string     `gorm:"type:text" json:"address"`
	AdminUserID    *uuid.UUID `gorm:"type:char(36);index" json:"admin_user_id"`
	Admissions     int        `gorm:"default:0" json:"admissions"`
	AdminUser      *User      `gorm:"foreignKey:AdminUserID" json:"admin_user,omitempty"`
}

// User represents a login account (platform admin, school admin, teacher or
// student). Teacher and Student rows reference their account by UserID.
type User struct {
	BaseModel
	SchoolID     *uuid.UUID `gorm:"type:char(36);index" json:"school_id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
}

// ParentContact is one parent's contact record, nested on a student.
type ParentContact struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Occupation string `json:"occupation"`
}

// Parents groups the father/mother contact records.
type Parents struct {
	Father ParentContact `json:"father"`
	Mother ParentContact `json:"mother"`
}

func (p Parents) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Parents) Scan(value interface{}) error {
	if value == nil {
		*p = Parents{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// TermFee is one term of a student's fee record.
type TermFee struct {
	Amount     float64 `json:"amount"`
	PaidAmount float64 `json:"paidAmount"`
	Status     string  `json:"status"`
	DueDate    string  `json:"dueDate"`
}

// ClassFees is a full class-year fee record: two terms plus the annual total.
type ClassFees struct {
	Term1     TermFee   `json:"term1"`
	Term2     TermFee   `json:"term2"`
	TotalFee  float64   `json:"totalFee"`
	ClassID   string    `json:"classId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FeeHistory maps a class-year key ("classId<N>") to that year's fee record.
type FeeHistory map[string]ClassFees

func (f FeeHistory) Value() (driver.Value, error) {
	if f == nil {
		f = make(FeeHistory)
	}
	return json.Marshal(f)
}

func (f *FeeHistory) Scan(value interface{}) error {
	if value == nil {
		*f = make(FeeHistory)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, f)
}

// Student represents a student. ClassID is a small integer as a string
// ("1".."10") or the terminal "Graduate". SchoolName is denormalized for
// display and search.
type Student struct {
	BaseModel
	SchoolID        uuid.UUID  `gorm:"type:char(36);not null;index;uniqueIndex:idx_admission_school" json:"school_id"`
	SchoolName      string     `gorm:"type:varchar(255)" json:"school_name"`
	UserID          uuid.UUID  `gorm:"type:char(36);index" json:"user_id"`
	StudentName     string     `gorm:"type:varchar(255);not null" json:"student_name"`
	StudentEmail    string     `gorm:"type:varchar(255)" json:"student_email"`
	AdmissionNumber string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_admission_school" json:"admission_number"`
	ClassID         string     `gorm:"type:varchar(10);not null;index" json:"class_id"`
	SectionID       string     `gorm:"type:char(1)" json:"section_id"`
	DOB             string     `gorm:"type:varchar(20)" json:"dob"`
	BloodGroup      string     `gorm:"type:varchar(5)" json:"blood_group"`
	Address         string     `gorm:"type:text" json:"address"`
	TempPassword    string     `gorm:"type:varchar(100)" json:"-"`
	Parents         Parents    `gorm:"type:json" json:"parents"`
	FeeHistory      FeeHistory `gorm:"type:json" json:"fee_history"`
	PromotedOn      *time.Time `json:"promoted_on,omitempty"`
	School          *School    `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// Assignment is one subject/class/section a teacher covers. Duplicate rows
// are allowed; there is no uniqueness constraint by design.
type Assignment struct {
	Subject string `json:"subject"`
	Class   string `json:"class"`
	Section string `json:"section"`
}

type Assignments []Assignment

func (a Assignments) Value() (driver.Value, error) {
	if a == nil {
		a = Assignments{}
	}
	return json.Marshal(a)
}

func (a *Assignments) Scan(value interface{}) error {
	if value == nil {
		*a = Assignments{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Teacher represents a teacher profile tied to a login account.
type Teacher struct {
	BaseModel
	SchoolID    uuid.UUID   `gorm:"type:char(36);not null;index" json:"school_id"`
	UserID      uuid.UUID   `gorm:"type:char(36);index" json:"user_id"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name"`
	Email       string      `gorm:"type:varchar(255);not null" json:"email"`
	Phone       string      `gorm:"type:varchar(20)" json:"phone"`
	Assignments Assignments `gorm:"type:json" json:"assignments"`
	School      *School     `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

// TimetableSlot is one cell of the fixed 6-day x 8-period grid.
type TimetableSlot struct {
	Day       string `json:"day"`
	Period    string `json:"period"`
	TeacherID string `json:"teacher"`
	Subject   string `json:"subject"`
}

type TimetableSlots []TimetableSlot

func (s TimetableSlots) Value() (driver.Value, error) {
	if s == nil {
		s = TimetableSlots{}
	}
	return json.Marshal(s)
}

func (s *TimetableSlots) Scan(value interface{}) error {
	if value == nil {
		*s = TimetableSlots{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Timetable is one row per (school, class, section) triple.
type Timetable struct {
	BaseModel
	SchoolID    uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_timetable_scope" json:"school_id"`
	Class       string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_timetable_scope" json:"class"`
	Section     string         `gorm:"type:char(1);not null;uniqueIndex:idx_timetable_scope" json:"section"`
	Slots       TimetableSlots `gorm:"type:json" json:"slots"`
	LastUpdated time.Time      `json:"last_updated"`
}

// AcademicYearReport aggregates roster counts per school per academic year
// (April-March cycle, keyed "YYYY_YYYY"). Counters are bumped with atomic
// column expressions, never read-modify-write.
type AcademicYearReport struct {
	BaseModel
	SchoolID      uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_report_school_year" json:"school_id"`
	Year          string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_report_school_year" json:"year"`
	TotalStudents int64     `gorm:"default:0" json:"total_students"`
	TotalTeachers int64     `gorm:"default:0" json:"total_teachers"`
}

// Activity is one append-only activity log entry. Never mutated or deleted.
type Activity struct {
	ID     uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Action string    `gorm:"type:text;not null" json:"action"`
	Actor  string    `gorm:"type:varchar(50);not null" json:"actor"`
	Time   time.Time `gorm:"autoCreateTime;index" json:"time"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
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
