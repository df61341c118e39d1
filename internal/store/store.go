package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"gorm.io/gorm"
)

// SchoolSummary is a school annotated with live roster counts.
type SchoolSummary struct {
	models.School
	StudentCount int64 `json:"student_count"`
	TeacherCount int64 `json:"teacher_count"`
}

// Store holds read-mostly snapshots of the platform's schools, teachers and
// students. Writes go to the database first; callers then Refresh, which
// refetches everything and notifies subscribers. The snapshot is never
// patched incrementally except where a method documents otherwise.
type Store struct {
	db       *gorm.DB
	activity *services.ActivityService

	mu       sync.RWMutex
	schools  []SchoolSummary
	teachers []models.Teacher
	students []models.Student

	subMu sync.Mutex
	subs  []func()
}

func New(db *gorm.DB, activity *services.ActivityService) *Store {
	return &Store{db: db, activity: activity}
}

// Subscribe registers a callback invoked after every snapshot change.
// Callbacks run synchronously on the goroutine that changed the snapshot.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Refresh refetches all snapshots from the database. School names are
// denormalized onto teachers and students from a single school scan.
func (s *Store) Refresh() error {
	var schools []models.School
	if err := s.db.Order("name").Find(&schools).Error; err != nil {
		return err
	}

	type countRow struct {
		SchoolID uuid.UUID
		N        int64
	}

	var studentCounts []countRow
	if err := s.db.Model(&models.Student{}).
		Select("school_id, COUNT(*) AS n").
		Group("school_id").
		Scan(&studentCounts).Error; err != nil {
		return err
	}

	var teacherCounts []countRow
	if err := s.db.Model(&models.Teacher{}).
		Select("school_id, COUNT(*) AS n").
		Group("school_id").
		Scan(&teacherCounts).Error; err != nil {
		return err
	}

	byStudents := make(map[uuid.UUID]int64, len(studentCounts))
	for _, r := range studentCounts {
		byStudents[r.SchoolID] = r.N
	}
	byTeachers := make(map[uuid.UUID]int64, len(teacherCounts))
	for _, r := range teacherCounts {
		byTeachers[r.SchoolID] = r.N
	}

	summaries := make([]SchoolSummary, len(schools))
	names := make(map[uuid.UUID]string, len(schools))
	for i, sc := range schools {
		summaries[i] = SchoolSummary{
			School:       sc,
			StudentCount: byStudents[sc.ID],
			TeacherCount: byTeachers[sc.ID],
		}
		names[sc.ID] = sc.Name
	}

	var teachers []models.Teacher
	if err := s.db.Order("name").Find(&teachers).Error; err != nil {
		return err
	}

	var students []models.Student
	if err := s.db.Order("student_name").Find(&students).Error; err != nil {
		return err
	}
	for i := range students {
		students[i].SchoolName = names[students[i].SchoolID]
	}

	s.mu.Lock()
	s.schools = summaries
	s.teachers = teachers
	s.students = students
	s.mu.Unlock()

	s.notify()
	return nil
}

// Schools returns the school snapshot. A non-nil scope restricts the result
// to that one school.
func (s *Store) Schools(scope *uuid.UUID) []SchoolSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SchoolSummary, 0, len(s.schools))
	for _, sc := range s.schools {
		if scope != nil && sc.ID != *scope {
			continue
		}
		out = append(out, sc)
	}
	return out
}

// SearchSchools filters the school snapshot by a case-insensitive substring
// match on the school name.
func (s *Store) SearchSchools(query string, scope *uuid.UUID) []SchoolSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Schools(scope)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SchoolSummary
	for _, sc := range s.schools {
		if scope != nil && sc.ID != *scope {
			continue
		}
		if strings.Contains(strings.ToLower(sc.Name), q) {
			out = append(out, sc)
		}
	}
	return out
}

// SchoolName resolves a school's display name from the snapshot.
func (s *Store) SchoolName(id uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.schools {
		if sc.ID == id {
			return sc.Name
		}
	}
	return ""
}

// Teachers returns the teacher snapshot, optionally scoped to one school.
func (s *Store) Teachers(scope *uuid.UUID) []models.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		if scope != nil && t.SchoolID != *scope {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SearchTeachers matches teachers on name, email, school name or phone.
func (s *Store) SearchTeachers(query string, scope *uuid.UUID) []models.Teacher {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Teachers(scope)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Teacher
	for _, t := range s.teachers {
		if scope != nil && t.SchoolID != *scope {
			continue
		}
		if matchTeacher(t, s.schoolNameLocked(t.SchoolID), q) {
			out = append(out, t)
		}
	}
	return out
}

// Students returns the student snapshot, optionally scoped to one school.
func (s *Store) Students(scope *uuid.UUID) []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		if scope != nil && st.SchoolID != *scope {
			continue
		}
		out = append(out, st)
	}
	return out
}

// SearchStudents matches students on name, admission number, school name or
// father's name.
func (s *Store) SearchStudents(query string, scope *uuid.UUID) []models.Student {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Students(scope)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Student
	for _, st := range s.students {
		if scope != nil && st.SchoolID != *scope {
			continue
		}
		if matchStudent(st, q) {
			out = append(out, st)
		}
	}
	return out
}

// DeleteTeacher removes a teacher and their login account, drops the teacher
// from the snapshot in place, and records the action. This is the one
// teacher-delete path; handlers must not delete teachers directly.
func (s *Store) DeleteTeacher(id uuid.UUID) error {
	var teacher models.Teacher
	if err := s.db.First(&teacher, "id = ?", id).Error; err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if teacher.UserID != uuid.Nil {
			if err := tx.Delete(&models.User{}, "id = ?", teacher.UserID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Teacher{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	for i, t := range s.teachers {
		if t.ID == id {
			s.teachers = append(s.teachers[:i], s.teachers[i+1:]...)
			break
		}
	}
	schoolName := s.schoolNameLocked(teacher.SchoolID)
	s.mu.Unlock()

	if s.activity != nil {
		s.activity.Log(fmt.Sprintf("Deleted teacher %s from %s", teacher.Name, schoolName), "Admin")
	}

	s.notify()
	return nil
}

// schoolNameLocked requires s.mu to be held.
func (s *Store) schoolNameLocked(id uuid.UUID) string {
	for _, sc := range s.schools {
		if sc.ID == id {
			return sc.Name
		}
	}
	return ""
}

func matchTeacher(t models.Teacher, schoolName, q string) bool {
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Email), q) ||
		strings.Contains(strings.ToLower(schoolName), q) ||
		strings.Contains(strings.ToLower(t.Phone), q)
}

func matchStudent(st models.Student, q string) bool {
	return strings.Contains(strings.ToLower(st.StudentName), q) ||
		strings.Contains(strings.ToLower(st.AdmissionNumber), q) ||
		strings.Contains(strings.ToLower(st.SchoolName), q) ||
		strings.Contains(strings.ToLower(st.Parents.Father.Name), q)
}
