package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/models"
)

func snapshotStore() (*Store, uuid.UUID, uuid.UUID) {
	greenwood := uuid.New()
	hillside := uuid.New()

	s := &Store{}
	s.schools = []SchoolSummary{
		{
			School:       models.School{BaseModel: models.BaseModel{ID: greenwood}, Name: "Greenwood High", ShortName: "gh"},
			StudentCount: 2,
			TeacherCount: 1,
		},
		{
			School:       models.School{BaseModel: models.BaseModel{ID: hillside}, Name: "Hillside Academy", ShortName: "ha"},
			StudentCount: 1,
			TeacherCount: 1,
		},
	}
	s.teachers = []models.Teacher{
		{BaseModel: models.BaseModel{ID: uuid.New()}, SchoolID: greenwood, Name: "Asha Verma", Email: "asha@gh.com", Phone: "9876543210"},
		{BaseModel: models.BaseModel{ID: uuid.New()}, SchoolID: hillside, Name: "Ravi Kumar", Email: "ravi@ha.com", Phone: "9123456780"},
	}
	s.students = []models.Student{
		{
			BaseModel: models.BaseModel{ID: uuid.New()}, SchoolID: greenwood, SchoolName: "Greenwood High",
			StudentName: "Meera Nair", AdmissionNumber: "12",
			Parents: models.Parents{Father: models.ParentContact{Name: "Suresh Nair"}},
		},
		{
			BaseModel: models.BaseModel{ID: uuid.New()}, SchoolID: greenwood, SchoolName: "Greenwood High",
			StudentName: "Arjun Das", AdmissionNumber: "13",
			Parents: models.Parents{Father: models.ParentContact{Name: "Prakash Das"}},
		},
		{
			BaseModel: models.BaseModel{ID: uuid.New()}, SchoolID: hillside, SchoolName: "Hillside Academy",
			StudentName: "Sana Khan", AdmissionNumber: "7",
			Parents: models.Parents{Father: models.ParentContact{Name: "Imran Khan"}},
		},
	}
	return s, greenwood, hillside
}

func TestScopeFiltering(t *testing.T) {
	s, greenwood, _ := snapshotStore()

	if got := len(s.Schools(nil)); got != 2 {
		t.Errorf("unscoped schools = %d, want 2", got)
	}
	if got := s.Schools(&greenwood); len(got) != 1 || got[0].Name != "Greenwood High" {
		t.Errorf("scoped schools = %+v", got)
	}
	if got := len(s.Students(&greenwood)); got != 2 {
		t.Errorf("scoped students = %d, want 2", got)
	}
	if got := len(s.Teachers(&greenwood)); got != 1 {
		t.Errorf("scoped teachers = %d, want 1", got)
	}
}

func TestSearchSchools(t *testing.T) {
	s, _, _ := snapshotStore()

	tests := []struct {
		query string
		want  int
	}{
		{"green", 1},
		{"GREEN", 1},
		{"academy", 1},
		{"", 2},
		{"   ", 2},
		{"nonexistent", 0},
	}
	for _, tt := range tests {
		if got := len(s.SearchSchools(tt.query, nil)); got != tt.want {
			t.Errorf("SearchSchools(%q) = %d results, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSearchTeachers(t *testing.T) {
	s, _, hillside := snapshotStore()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"By name", "asha", 1},
		{"By email", "ravi@ha", 1},
		{"By school name", "hillside", 1},
		{"By phone", "9876", 1},
		{"No match", "zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.SearchTeachers(tt.query, nil)); got != tt.want {
				t.Errorf("SearchTeachers(%q) = %d results, want %d", tt.query, got, tt.want)
			}
		})
	}

	// Scope applies before the match.
	if got := len(s.SearchTeachers("asha", &hillside)); got != 0 {
		t.Errorf("scoped search leaked across schools: %d results", got)
	}
}

func TestSearchStudents(t *testing.T) {
	s, _, _ := snapshotStore()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"By name", "meera", 1},
		{"By admission number", "13", 1},
		{"By school name", "greenwood", 2},
		{"By father name", "imran", 1},
		{"Case insensitive", "SANA", 1},
		{"No match", "zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.SearchStudents(tt.query, nil)); got != tt.want {
				t.Errorf("SearchStudents(%q) = %d results, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestSchoolName(t *testing.T) {
	s, greenwood, _ := snapshotStore()
	if got := s.SchoolName(greenwood); got != "Greenwood High" {
		t.Errorf("SchoolName = %q", got)
	}
	if got := s.SchoolName(uuid.New()); got != "" {
		t.Errorf("unknown school resolved to %q", got)
	}
}

func TestSubscribe(t *testing.T) {
	s, _, _ := snapshotStore()

	calls := 0
	s.Subscribe(func() { calls++ })
	s.Subscribe(func() { calls++ })

	s.notify()
	if calls != 2 {
		t.Errorf("notify reached %d subscribers, want 2", calls)
	}
}
