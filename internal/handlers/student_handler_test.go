package handlers

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewYearReport(t *testing.T) {
	schoolID := uuid.New()

	report := newYearReport(schoolID, "2025_2026", "total_students")
	if report.TotalStudents != 1 || report.TotalTeachers != 0 {
		t.Errorf("student report = %d/%d, want 1/0", report.TotalStudents, report.TotalTeachers)
	}

	report = newYearReport(schoolID, "2025_2026", "total_teachers")
	if report.TotalStudents != 0 || report.TotalTeachers != 1 {
		t.Errorf("teacher report = %d/%d, want 0/1", report.TotalStudents, report.TotalTeachers)
	}

	if report.SchoolID != schoolID || report.Year != "2025_2026" {
		t.Errorf("report scope = %v %q", report.SchoolID, report.Year)
	}
}
