package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"github.com/school-diary/backend/internal/store"
	"gorm.io/gorm"
)

// The grid is fixed: six teaching days, eight periods each.
var timetableDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

const timetablePeriods = 8

type TimetableHandler struct {
	db       *gorm.DB
	store    *store.Store
	activity *services.ActivityService
}

func NewTimetableHandler(db *gorm.DB, st *store.Store, activity *services.ActivityService) *TimetableHandler {
	return &TimetableHandler{db: db, store: st, activity: activity}
}

// fullGrid expands the stored slots to the complete 6x8 grid, blank cells
// included, in day-then-period order.
func fullGrid(stored models.TimetableSlots) models.TimetableSlots {
	byCell := make(map[string]models.TimetableSlot, len(stored))
	for _, s := range stored {
		byCell[s.Day+"/"+s.Period] = s
	}

	grid := make(models.TimetableSlots, 0, len(timetableDays)*timetablePeriods)
	for _, day := range timetableDays {
		for p := 1; p <= timetablePeriods; p++ {
			period := fmt.Sprintf("%d", p)
			if s, ok := byCell[day+"/"+period]; ok {
				grid = append(grid, s)
				continue
			}
			grid = append(grid, models.TimetableSlot{Day: day, Period: period})
		}
	}
	return grid
}

// Get returns the timetable of one class/section, default-filled when no
// row exists yet.
func (h *TimetableHandler) Get(c *gin.Context) {
	schoolID, class, section, ok := h.scopeParams(c)
	if !ok {
		return
	}

	var tt models.Timetable
	err := h.db.Where("school_id = ? AND class = ? AND section = ?", schoolID, class, section).
		First(&tt).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"class":        class,
			"section":      section,
			"slots":        fullGrid(nil),
			"last_updated": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"class":        tt.Class,
		"section":      tt.Section,
		"slots":        fullGrid(tt.Slots),
		"last_updated": tt.LastUpdated,
	})
}

type slotRequest struct {
	SchoolID  uuid.UUID `json:"school_id" binding:"required"`
	Class     string    `json:"class" binding:"required"`
	Section   string    `json:"section" binding:"required"`
	Day       string    `json:"day" binding:"required"`
	Period    string    `json:"period" binding:"required"`
	TeacherID string    `json:"teacher"`
	Subject   string    `json:"subject"`
}

// SaveSlot assigns a teacher and subject to one cell, creating the
// timetable row on first write.
func (h *TimetableHandler) SaveSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validCell(req.Day, req.Period) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day or period"})
		return
	}
	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot edit another school's timetable"})
		return
	}

	err := h.mutateSlots(req.SchoolID, req.Class, req.Section, func(slots models.TimetableSlots) models.TimetableSlots {
		out := removeCell(slots, req.Day, req.Period)
		return append(out, models.TimetableSlot{
			Day:       req.Day,
			Period:    req.Period,
			TeacherID: req.TeacherID,
			Subject:   req.Subject,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save slot: " + err.Error()})
		return
	}

	h.activity.Log(
		fmt.Sprintf("Updated timetable for class %s-%s (%s period %s)", req.Class, req.Section, req.Day, req.Period),
		"Admin")
	c.JSON(http.StatusOK, gin.H{"message": "Slot saved"})
}

// ClearSlot empties one cell.
func (h *TimetableHandler) ClearSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot edit another school's timetable"})
		return
	}

	err := h.mutateSlots(req.SchoolID, req.Class, req.Section, func(slots models.TimetableSlots) models.TimetableSlots {
		return removeCell(slots, req.Day, req.Period)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear slot: " + err.Error()})
		return
	}

	h.activity.Log(
		fmt.Sprintf("Cleared timetable slot for class %s-%s (%s period %s)", req.Class, req.Section, req.Day, req.Period),
		"Admin")
	c.JSON(http.StatusOK, gin.H{"message": "Slot cleared"})
}

func (h *TimetableHandler) mutateSlots(schoolID uuid.UUID, class, section string, mutate func(models.TimetableSlots) models.TimetableSlots) error {
	return h.db.Transaction(func(tx *gorm.DB) error {
		var tt models.Timetable
		err := tx.Where("school_id = ? AND class = ? AND section = ?", schoolID, class, section).
			First(&tt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tt = models.Timetable{SchoolID: schoolID, Class: class, Section: section}
		} else if err != nil {
			return err
		}

		tt.Slots = mutate(tt.Slots)
		tt.LastUpdated = time.Now()
		return tx.Save(&tt).Error
	})
}

func (h *TimetableHandler) scopeParams(c *gin.Context) (uuid.UUID, string, string, bool) {
	class := c.Query("class")
	section := c.Query("section")
	if class == "" || section == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "class and section are required"})
		return uuid.Nil, "", "", false
	}

	var schoolID uuid.UUID
	if scope := middleware.Scope(c); scope != nil {
		schoolID = *scope
	} else {
		id, err := uuid.Parse(c.Query("school_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "school_id is required"})
			return uuid.Nil, "", "", false
		}
		schoolID = id
	}
	return schoolID, class, section, true
}

func validCell(day, period string) bool {
	dayOK := false
	for _, d := range timetableDays {
		if d == day {
			dayOK = true
			break
		}
	}
	if !dayOK {
		return false
	}
	for p := 1; p <= timetablePeriods; p++ {
		if fmt.Sprintf("%d", p) == period {
			return true
		}
	}
	return false
}

func removeCell(slots models.TimetableSlots, day, period string) models.TimetableSlots {
	out := slots[:0]
	for _, s := range slots {
		if s.Day == day && s.Period == period {
			continue
		}
		out = append(out, s)
	}
	return out
}
