package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/academic"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"github.com/school-diary/backend/internal/store"
	"gorm.io/gorm"
)

type PromotionHandler struct {
	db       *gorm.DB
	store    *store.Store
	activity *services.ActivityService
}

func NewPromotionHandler(db *gorm.DB, st *store.Store, activity *services.ActivityService) *PromotionHandler {
	return &PromotionHandler{db: db, store: st, activity: activity}
}

// Candidates lists students who can still move up a class. Graduated
// students never appear here.
func (h *PromotionHandler) Candidates(c *gin.Context) {
	query := h.db.Where("class_id <> ?", models.ClassGraduate)
	if scope := middleware.Scope(c); scope != nil {
		query = query.Where("school_id = ?", *scope)
	} else if schoolID := c.Query("school_id"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if class := c.Query("class_id"); class != "" {
		query = query.Where("class_id = ?", class)
	}
	if section := c.Query("section_id"); section != "" {
		query = query.Where("section_id = ?", section)
	}

	var students []models.Student
	if err := query.Order("class_id, section_id, student_name").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

// PromoteStudent moves one student to the next class and stamps the
// promotion time.
func (h *PromotionHandler) PromoteStudent(c *gin.Context) {
	id := c.Param("id")
	var student models.Student
	query := h.db.Where("id = ?", id)
	if scope := middleware.Scope(c); scope != nil {
		query = query.Where("school_id = ?", *scope)
	}
	if err := query.First(&student).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	next, ok := academic.Promote(student.ClassID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student is not eligible for promotion"})
		return
	}

	now := time.Now()
	student.ClassID = next
	student.PromotedOn = &now
	if err := h.db.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Promoted %s to class %s", student.StudentName, next), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, student)
}

// PromoteClass promotes every eligible student of one class and section in
// a single transaction.
func (h *PromotionHandler) PromoteClass(c *gin.Context) {
	var req struct {
		SchoolID  uuid.UUID `json:"school_id" binding:"required"`
		ClassID   string    `json:"class_id" binding:"required"`
		SectionID string    `json:"section_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot promote students of another school"})
		return
	}

	next, ok := academic.Promote(req.ClassID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class has no promotion target"})
		return
	}

	now := time.Now()
	var promoted int64
	err := h.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Student{}).
			Where("school_id = ? AND class_id = ?", req.SchoolID, req.ClassID)
		if req.SectionID != "" {
			query = query.Where("section_id = ?", req.SectionID)
		}
		res := query.Updates(map[string]interface{}{
			"class_id":    next,
			"promoted_on": now,
		})
		promoted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Promotion failed: " + err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Promoted class %s to %s (%d students)", req.ClassID, next, promoted), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, gin.H{"promoted": promoted, "to_class": next})
}

// PromoteAll advances every eligible student of a school. The scan and the
// writes run inside one transaction so a student admitted mid-promotion is
// either fully in this year or fully in the next, never half-moved.
func (h *PromotionHandler) PromoteAll(c *gin.Context) {
	var req struct {
		SchoolID uuid.UUID `json:"school_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot promote students of another school"})
		return
	}

	now := time.Now()
	promoted := 0
	graduated := 0
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var students []models.Student
		if err := tx.Where("school_id = ? AND class_id <> ?", req.SchoolID, models.ClassGraduate).
			Find(&students).Error; err != nil {
			return err
		}

		for i := range students {
			next, ok := academic.Promote(students[i].ClassID)
			if !ok {
				continue
			}
			if err := tx.Model(&students[i]).Updates(map[string]interface{}{
				"class_id":    next,
				"promoted_on": now,
			}).Error; err != nil {
				return err
			}
			if next == models.ClassGraduate {
				graduated++
			} else {
				promoted++
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Promotion failed: " + err.Error()})
		return
	}

	h.activity.Log(
		fmt.Sprintf("Promoted all eligible students of %s (%d promoted, %d graduated)",
			h.store.SchoolName(req.SchoolID), promoted, graduated),
		"Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, gin.H{"promoted": promoted, "graduated": graduated})
}
