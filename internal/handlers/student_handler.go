package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/academic"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"github.com/school-diary/backend/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentHandler struct {
	db          *gorm.DB
	store       *store.Store
	authService *services.AuthService
	activity    *services.ActivityService
	notify      *services.NotifyService
}

func NewStudentHandler(db *gorm.DB, st *store.Store, auth *services.AuthService, activity *services.ActivityService, notify *services.NotifyService) *StudentHandler {
	return &StudentHandler{
		db:          db,
		store:       st,
		authService: auth,
		activity:    activity,
		notify:      notify,
	}
}

func (h *StudentHandler) List(c *gin.Context) {
	students := h.store.SearchStudents(c.Query("q"), middleware.Scope(c))
	c.JSON(http.StatusOK, students)
}

func (h *StudentHandler) Get(c *gin.Context) {
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
	c.JSON(http.StatusOK, student)
}

type admitRequest struct {
	SchoolID        uuid.UUID      `json:"school_id" binding:"required"`
	StudentName     string         `json:"student_name" binding:"required"`
	ClassID         string         `json:"class_id" binding:"required"`
	SectionID       string         `json:"section_id"`
	DOB             string         `json:"dob"`
	BloodGroup      string         `json:"blood_group"`
	Address         string         `json:"address"`
	AdmissionNumber string         `json:"admission_number"`
	Parents         models.Parents `json:"parents"`
	TotalFee        float64        `json:"total_fee"`
	Term1DueDate    string         `json:"term1_due_date"`
	Term2DueDate    string         `json:"term2_due_date"`
}

// Create admits one student. The school row is locked for the duration of
// the transaction so the admission counter can be read, used and advanced
// without a concurrent admission observing the same value.
func (h *StudentHandler) Create(c *gin.Context) {
	var req admitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot add students to another school"})
		return
	}

	student, tempPassword, err := h.admit(req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to add student: " + err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Added student %s to %s", student.StudentName, student.SchoolName), "Admin")
	h.notify.SendCredentials(services.CredentialNotice{
		ToEmail:     student.Parents.Father.Email,
		Username:    student.StudentEmail,
		Password:    tempPassword,
		StudentName: student.StudentName,
		FatherName:  student.Parents.Father.Name,
	})
	h.store.Refresh()

	c.JSON(http.StatusCreated, gin.H{
		"student":       student,
		"login_email":   student.StudentEmail,
		"temp_password": tempPassword,
	})
}

// admit runs the whole admission as one transaction: counter advance,
// account creation, student row, fee ledger seed and year-report bump.
func (h *StudentHandler) admit(req admitRequest) (*models.Student, string, error) {
	var student models.Student
	var tempPassword string

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var school models.School
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&school, "id = ?", req.SchoolID).Error; err != nil {
			return fmt.Errorf("school not found")
		}

		admission := req.AdmissionNumber
		if admission == "" {
			admission = strconv.Itoa(school.Admissions + 1)
		}
		if err := tx.Model(&school).Update("admissions", gorm.Expr("admissions + 1")).Error; err != nil {
			return err
		}

		email := academic.StudentEmail(admission, school.ShortName)
		tempPassword = academic.TempPassword(admission, school.ShortName)
		hash, err := h.authService.HashPassword(tempPassword)
		if err != nil {
			return err
		}

		account := models.User{
			SchoolID:     &school.ID,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleStudent,
			FullName:     req.StudentName,
			IsActive:     true,
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		ledger := models.FeeHistory{}
		if req.TotalFee > 0 {
			ledger[academic.ClassKey(req.ClassID)] = academic.NewClassFees(
				req.ClassID, req.TotalFee, req.Term1DueDate, req.Term2DueDate, time.Now())
		}

		student = models.Student{
			SchoolID:        school.ID,
			SchoolName:      school.Name,
			UserID:          account.ID,
			StudentName:     req.StudentName,
			StudentEmail:    email,
			AdmissionNumber: admission,
			ClassID:         req.ClassID,
			SectionID:       req.SectionID,
			DOB:             req.DOB,
			BloodGroup:      req.BloodGroup,
			Address:         req.Address,
			TempPassword:    tempPassword,
			Parents:         req.Parents,
			FeeHistory:      ledger,
		}
		if err := tx.Create(&student).Error; err != nil {
			return err
		}

		return bumpYearReport(tx, school.ID, "total_students")
	})
	if err != nil {
		return nil, "", err
	}
	return &student, tempPassword, nil
}

// bumpYearReport advances one counter on the school's current academic-year
// report, creating the row on first use. The column moves by expression,
// never read-modify-write.
func bumpYearReport(tx *gorm.DB, schoolID uuid.UUID, column string) error {
	year := academic.YearKey(time.Now())

	res := tx.Model(&models.AcademicYearReport{}).
		Where("school_id = ? AND year = ?", schoolID, year).
		Update(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	report := newYearReport(schoolID, year, column)
	return tx.Create(&report).Error
}

func newYearReport(schoolID uuid.UUID, year, column string) models.AcademicYearReport {
	report := models.AcademicYearReport{SchoolID: schoolID, Year: year}
	switch column {
	case "total_students":
		report.TotalStudents = 1
	case "total_teachers":
		report.TotalTeachers = 1
	}
	return report
}

// Update merges editable fields. Class, admission number and login email
// never change here; class moves only through promotion.
func (h *StudentHandler) Update(c *gin.Context) {
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

	var req struct {
		StudentName *string         `json:"student_name"`
		SectionID   *string         `json:"section_id"`
		DOB         *string         `json:"dob"`
		BloodGroup  *string         `json:"blood_group"`
		Address     *string         `json:"address"`
		Parents     *models.Parents `json:"parents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StudentName != nil {
		student.StudentName = *req.StudentName
	}
	if req.SectionID != nil {
		student.SectionID = *req.SectionID
	}
	if req.DOB != nil {
		student.DOB = *req.DOB
	}
	if req.BloodGroup != nil {
		student.BloodGroup = *req.BloodGroup
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.Parents != nil {
		student.Parents = *req.Parents
	}

	if err := h.db.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Updated student %s", student.StudentName), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Delete(c *gin.Context) {
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

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if student.UserID != uuid.Nil {
			if err := tx.Delete(&models.User{}, "id = ?", student.UserID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student: " + err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Deleted student %s from %s", student.StudentName, student.SchoolName), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}
