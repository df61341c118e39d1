package handlers

import (
	"testing"

	"github.com/school-diary/backend/internal/models"
)

func TestFullGrid(t *testing.T) {
	grid := fullGrid(nil)
	if len(grid) != 48 {
		t.Fatalf("empty grid has %d cells, want 48", len(grid))
	}
	if grid[0].Day != "Monday" || grid[0].Period != "1" {
		t.Errorf("first cell = %s period %s", grid[0].Day, grid[0].Period)
	}
	if grid[47].Day != "Saturday" || grid[47].Period != "8" {
		t.Errorf("last cell = %s period %s", grid[47].Day, grid[47].Period)
	}

	stored := models.TimetableSlots{
		{Day: "Tuesday", Period: "3", TeacherID: "t1", Subject: "Maths"},
	}
	grid = fullGrid(stored)
	if len(grid) != 48 {
		t.Fatalf("grid has %d cells, want 48", len(grid))
	}

	filled := 0
	for _, cell := range grid {
		if cell.Subject != "" {
			filled++
			if cell.Day != "Tuesday" || cell.Period != "3" || cell.TeacherID != "t1" {
				t.Errorf("assigned cell landed at %s period %s", cell.Day, cell.Period)
			}
		}
	}
	if filled != 1 {
		t.Errorf("%d filled cells, want 1", filled)
	}
}

func TestValidCell(t *testing.T) {
	tests := []struct {
		day    string
		period string
		want   bool
	}{
		{"Monday", "1", true},
		{"Saturday", "8", true},
		{"Sunday", "1", false},
		{"Monday", "9", false},
		{"Monday", "0", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := validCell(tt.day, tt.period); got != tt.want {
			t.Errorf("validCell(%q, %q) = %v, want %v", tt.day, tt.period, got, tt.want)
		}
	}
}

func TestRemoveCell(t *testing.T) {
	slots := models.TimetableSlots{
		{Day: "Monday", Period: "1", Subject: "English"},
		{Day: "Monday", Period: "2", Subject: "Maths"},
	}

	out := removeCell(slots, "Monday", "1")
	if len(out) != 1 || out[0].Subject != "Maths" {
		t.Errorf("removeCell left %+v", out)
	}

	out = removeCell(out, "Friday", "8")
	if len(out) != 1 {
		t.Errorf("removing an absent cell changed the slots: %+v", out)
	}
}
