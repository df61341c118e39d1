package handlers

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func validRow() importRow {
	return importRow{
		StudentName: "Meera Nair",
		Class:       "4",
		Section:     "A",
		BloodGroup:  "B+",
		FatherName:  "Suresh Nair",
		FatherPhone: "9876543210",
		FatherEmail: "suresh@example.com",
	}
}

func TestImportRowValidation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name   string
		mutate func(*importRow)
		valid  bool
	}{
		{"Valid row", func(r *importRow) {}, true},
		{"Missing student name", func(r *importRow) { r.StudentName = "" }, false},
		{"Missing class", func(r *importRow) { r.Class = "" }, false},
		{"Missing father name", func(r *importRow) { r.FatherName = "" }, false},
		{"Short phone", func(r *importRow) { r.FatherPhone = "12345" }, false},
		{"Non-numeric phone", func(r *importRow) { r.FatherPhone = "98765abcde" }, false},
		{"Empty phone allowed", func(r *importRow) { r.FatherPhone = "" }, true},
		{"Bad email", func(r *importRow) { r.FatherEmail = "not-an-email" }, false},
		{"Unknown blood group", func(r *importRow) { r.BloodGroup = "X+" }, false},
		{"Blood group None", func(r *importRow) { r.BloodGroup = "None" }, true},
		{"Empty blood group allowed", func(r *importRow) { r.BloodGroup = "" }, true},
		{"Mother fields optional", func(r *importRow) { r.MotherName = ""; r.MotherPhone = "" }, true},
		{"Bad mother phone", func(r *importRow) { r.MotherPhone = "1" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)
			err := v.Struct(row)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestRowError(t *testing.T) {
	v := validator.New()

	row := validRow()
	row.FatherPhone = "12345"
	err := v.Struct(row)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := rowError(err)
	if !strings.Contains(msg, "10-digit") {
		t.Errorf("phone failure message = %q", msg)
	}

	row = validRow()
	row.StudentName = ""
	msg = rowError(v.Struct(row))
	if !strings.Contains(msg, "required") {
		t.Errorf("required failure message = %q", msg)
	}
}

func TestTemplateHeader(t *testing.T) {
	cols := strings.Split(templateHeader, ",")
	want := []string{
		"studentName", "class", "section", "dob", "bloodGroup", "admissionNumber",
		"fatherName", "fatherPhone", "fatherEmail", "fatherOccupation",
		"motherName", "motherPhone", "motherEmail", "motherOccupation",
		"address", "totalFee",
	}
	if len(cols) != len(want) {
		t.Fatalf("template has %d columns, want %d", len(cols), len(want))
	}
	for i, col := range cols {
		if col != want[i] {
			t.Errorf("column %d = %q, want %q", i, col, want[i])
		}
	}
}
