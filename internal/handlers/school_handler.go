package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/school-diary/backend/internal/academic"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"github.com/school-diary/backend/internal/store"
	"gorm.io/gorm"
)

type SchoolHandler struct {
	db          *gorm.DB
	store       *store.Store
	authService *services.AuthService
	activity    *services.ActivityService
}

func NewSchoolHandler(db *gorm.DB, st *store.Store, auth *services.AuthService, activity *services.ActivityService) *SchoolHandler {
	return &SchoolHandler{
		db:          db,
		store:       st,
		authService: auth,
		activity:    activity,
	}
}

func (h *SchoolHandler) List(c *gin.Context) {
	schools := h.store.SearchSchools(c.Query("q"), middleware.Scope(c))
	c.JSON(http.StatusOK, schools)
}

// Create provisions the school admin login account and the school row in one
// transaction. If either fails, neither survives.
func (h *SchoolHandler) Create(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		ShortName      string `json:"short_name"`
		PrincipalName  string `json:"principal_name"`
		PrincipalPhone string `json:"principal_phone"`
		Address        string `json:"address"`
		AdminPassword  string `json:"admin_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shortName := req.ShortName
	if shortName == "" {
		shortName = academic.ShortName(req.Name)
	}

	adminEmail := academic.SchoolAdminEmail(shortName)

	hash, err := h.authService.HashPassword(req.AdminPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin account"})
		return
	}

	school := models.School{
		Name:           req.Name,
		ShortName:      shortName,
		PrincipalName:  req.PrincipalName,
		PrincipalPhone: req.PrincipalPhone,
		Address:        req.Address,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", adminEmail).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("email %s already in use", adminEmail)
		}

		if err := tx.Create(&school).Error; err != nil {
			return err
		}

		admin := models.User{
			SchoolID:     &school.ID,
			Email:        adminEmail,
			PasswordHash: hash,
			Role:         models.RoleSchoolAdmin,
			FullName:     req.PrincipalName,
			IsActive:     true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		school.AdminUserID = &admin.ID
		return tx.Model(&school).Update("admin_user_id", admin.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to create school: " + err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Added school %s", school.Name), "Admin")
	h.store.Refresh()

	c.JSON(http.StatusCreated, gin.H{
		"school":      school,
		"admin_email": adminEmail,
	})
}

func (h *SchoolHandler) Get(c *gin.Context) {
	id := c.Param("id")
	var school models.School
	if err := h.db.First(&school, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}
	c.JSON(http.StatusOK, school)
}

// Update merges the provided fields. The short name and the admission counter
// never change through this endpoint; generated credentials and counters
// depend on them.
func (h *SchoolHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var school models.School
	if err := h.db.First(&school, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	var req struct {
		Name           *string `json:"name"`
		PrincipalName  *string `json:"principal_name"`
		PrincipalPhone *string `json:"principal_phone"`
		Address        *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		school.Name = *req.Name
	}
	if req.PrincipalName != nil {
		school.PrincipalName = *req.PrincipalName
	}
	if req.PrincipalPhone != nil {
		school.PrincipalPhone = *req.PrincipalPhone
	}
	if req.Address != nil {
		school.Address = *req.Address
	}

	if err := h.db.Save(&school).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Updated school %s", school.Name), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, school)
}

// Delete removes the school and everything under it in one transaction:
// students, teachers, their login accounts, timetables, year reports, then
// the school row and its admin account.
func (h *SchoolHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	var school models.School
	if err := h.db.First(&school, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM users WHERE id IN (SELECT user_id FROM students WHERE school_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Student{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM users WHERE id IN (SELECT user_id FROM teachers WHERE school_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Teacher{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.Timetable{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.AcademicYearReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&school).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete school: " + err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Deleted school %s", school.Name), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, gin.H{"message": "School and all related data deleted successfully"})
}
