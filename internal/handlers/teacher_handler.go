package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
	"github.com/school-diary/backend/internal/store"
	"gorm.io/gorm"
)

type TeacherHandler struct {
	db          *gorm.DB
	store       *store.Store
	authService *services.AuthService
	activity    *services.ActivityService
}

func NewTeacherHandler(db *gorm.DB, st *store.Store, auth *services.AuthService, activity *services.ActivityService) *TeacherHandler {
	return &TeacherHandler{
		db:          db,
		store:       st,
		authService: auth,
		activity:    activity,
	}
}

func (h *TeacherHandler) List(c *gin.Context) {
	teachers := h.store.SearchTeachers(c.Query("q"), middleware.Scope(c))
	c.JSON(http.StatusOK, teachers)
}

func (h *TeacherHandler) Get(c *gin.Context) {
	id := c.Param("id")
	var teacher models.Teacher
	if err := h.db.First(&teacher, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}
	c.JSON(http.StatusOK, teacher)
}

// Create provisions the login account and the teacher profile together.
// Assignment rows carry no uniqueness constraint; duplicates are accepted
// as entered.
func (h *TeacherHandler) Create(c *gin.Context) {
	var req struct {
		SchoolID    uuid.UUID          `json:"school_id" binding:"required"`
		Name        string             `json:"name" binding:"required"`
		Email       string             `json:"email" binding:"required,email"`
		Password    string             `json:"password" binding:"required,min=6"`
		Phone       string             `json:"phone"`
		Assignments models.Assignments `json:"assignments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot add teachers to another school"})
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	teacher := models.Teacher{
		SchoolID:    req.SchoolID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Assignments: req.Assignments,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		account := models.User{
			SchoolID:     &req.SchoolID,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.RoleTeacher,
			FullName:     req.Name,
			IsActive:     true,
		}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		teacher.UserID = account.ID
		if err := tx.Create(&teacher).Error; err != nil {
			return err
		}
		return bumpYearReport(tx, req.SchoolID, "total_teachers")
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to create teacher: " + err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Added teacher %s to %s", teacher.Name, h.store.SchoolName(teacher.SchoolID)), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusCreated, teacher)
}

func (h *TeacherHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var teacher models.Teacher
	query := h.db.Where("id = ?", id)
	if scope := middleware.Scope(c); scope != nil {
		query = query.Where("school_id = ?", *scope)
	}
	if err := query.First(&teacher).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	var req struct {
		Name        *string             `json:"name"`
		Phone       *string             `json:"phone"`
		Assignments *models.Assignments `json:"assignments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Phone != nil {
		teacher.Phone = *req.Phone
	}
	if req.Assignments != nil {
		teacher.Assignments = *req.Assignments
	}

	if err := h.db.Save(&teacher).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.activity.Log(fmt.Sprintf("Updated teacher %s", teacher.Name), "Admin")
	h.store.Refresh()
	c.JSON(http.StatusOK, teacher)
}

// Delete goes through the store's centralized delete command.
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}

	if scope := middleware.Scope(c); scope != nil {
		var count int64
		h.db.Model(&models.Teacher{}).Where("id = ? AND school_id = ?", id, *scope).Count(&count)
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
			return
		}
	}

	if err := h.store.DeleteTeacher(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete teacher: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Teacher deleted"})
}
