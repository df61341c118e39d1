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

type FeeHandler struct {
	db       *gorm.DB
	store    *store.Store
	activity *services.ActivityService
}

func NewFeeHandler(db *gorm.DB, st *store.Store, activity *services.ActivityService) *FeeHandler {
	return &FeeHandler{db: db, store: st, activity: activity}
}

// feeRosterEntry is one student's row on the fee screen: the ledger record
// for their current class, zero-valued when no structure has been assigned
// yet, plus what is still owed from the previous class year.
type feeRosterEntry struct {
	StudentID       uuid.UUID        `json:"student_id"`
	StudentName     string           `json:"student_name"`
	AdmissionNumber string           `json:"admission_number"`
	ClassID         string           `json:"class_id"`
	SectionID       string           `json:"section_id"`
	Fees            models.ClassFees `json:"fees"`
	PreviousPending float64          `json:"previous_pending"`
}

// Roster returns the fee state of a class/section.
func (h *FeeHandler) Roster(c *gin.Context) {
	query := h.db.Model(&models.Student{})
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
	if err := query.Order("student_name").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	roster := make([]feeRosterEntry, len(students))
	for i, st := range students {
		roster[i] = rosterEntry(st)
	}

	c.JSON(http.StatusOK, roster)
}

// rosterEntry derives one student's fee row. A student with no ledger entry
// for their current class gets a zero-amount record with both terms pending;
// status is always one of pending or paid, never empty.
func rosterEntry(st models.Student) feeRosterEntry {
	fees, ok := st.FeeHistory[academic.ClassKey(st.ClassID)]
	if !ok {
		fees = models.ClassFees{
			ClassID: st.ClassID,
			Term1:   models.TermFee{Status: models.FeeStatusPending},
			Term2:   models.TermFee{Status: models.FeeStatusPending},
		}
	}

	var prev float64
	if key, ok := academic.PreviousClassKey(st.ClassID); ok {
		if record, found := st.FeeHistory[key]; found {
			prev = academic.PendingAmount(record.Term1) + academic.PendingAmount(record.Term2)
		}
	}

	return feeRosterEntry{
		StudentID:       st.ID,
		StudentName:     st.StudentName,
		AdmissionNumber: st.AdmissionNumber,
		ClassID:         st.ClassID,
		SectionID:       st.SectionID,
		Fees:            fees,
		PreviousPending: prev,
	}
}

// AssignStructure writes a fee structure onto the selected students: the
// annual total split into two terms, both pending. One submission is one
// transaction.
func (h *FeeHandler) AssignStructure(c *gin.Context) {
	var req struct {
		SchoolID     uuid.UUID   `json:"school_id" binding:"required"`
		ClassID      string      `json:"class_id" binding:"required"`
		TotalFee     float64     `json:"total_fee" binding:"required,gt=0"`
		Term1DueDate string      `json:"term1_due_date"`
		Term2DueDate string      `json:"term2_due_date"`
		StudentIDs   []uuid.UUID `json:"student_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot assign fees for another school"})
		return
	}

	now := time.Now()
	assigned := 0
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var students []models.Student
		if err := tx.Where("school_id = ? AND id IN ?", req.SchoolID, req.StudentIDs).
			Find(&students).Error; err != nil {
			return err
		}

		for i := range students {
			if students[i].FeeHistory == nil {
				students[i].FeeHistory = models.FeeHistory{}
			}
			students[i].FeeHistory[academic.ClassKey(req.ClassID)] = academic.NewClassFees(
				req.ClassID, req.TotalFee, req.Term1DueDate, req.Term2DueDate, now)
			if err := tx.Model(&students[i]).
				Update("fee_history", students[i].FeeHistory).Error; err != nil {
				return err
			}
			assigned++
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fee assignment failed: " + err.Error()})
		return
	}

	h.activity.Log(
		fmt.Sprintf("Assigned class %s fee structure to %d students", req.ClassID, assigned),
		"Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, gin.H{"assigned": assigned})
}

type termRequest struct {
	Term string `json:"term" binding:"required,oneof=term1 term2"`
}

type paymentRequest struct {
	Term    string  `json:"term" binding:"required,oneof=term1 term2"`
	Payment float64 `json:"payment" binding:"required,gt=0"`
}

// MarkPaid settles one term in full.
func (h *FeeHandler) MarkPaid(c *gin.Context) {
	var req termRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.updateTerm(c, req.Term, 0,
		func(t *models.TermFee, _ float64) { academic.MarkPaid(t) },
		"Marked class %s %s as paid for %s")
}

// MarkPending resets one term to unpaid, discarding any partial payment.
func (h *FeeHandler) MarkPending(c *gin.Context) {
	var req termRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.updateTerm(c, req.Term, 0,
		func(t *models.TermFee, _ float64) { academic.MarkPending(t) },
		"Marked class %s %s as pending for %s")
}

// RecordPayment applies a partial payment to one term. The amount must be
// positive; a paid term can only move back to pending through MarkPending.
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.updateTerm(c, req.Term, req.Payment, academic.ApplyPayment,
		"Recorded a payment on class %s %s for %s")
}

func (h *FeeHandler) updateTerm(c *gin.Context, term string, payment float64, apply func(*models.TermFee, float64), activityFormat string) {
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

	key := academic.ClassKey(student.ClassID)
	fees, ok := student.FeeHistory[key]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fee structure assigned for the current class"})
		return
	}

	switch term {
	case "term1":
		apply(&fees.Term1, payment)
	case "term2":
		apply(&fees.Term2, payment)
	}
	fees.UpdatedAt = time.Now()
	student.FeeHistory[key] = fees

	if err := h.db.Model(&student).Update("fee_history", student.FeeHistory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf(activityFormat, student.ClassID, term, student.StudentName), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, gin.H{"fees": fees})
}
