package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"gorm.io/gorm"
)

type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// List returns per-school academic-year aggregates, newest year first.
func (h *ReportHandler) List(c *gin.Context) {
	query := h.db.Model(&models.AcademicYearReport{})
	if scope := middleware.Scope(c); scope != nil {
		query = query.Where("school_id = ?", *scope)
	} else if schoolID := c.Query("school_id"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}

	var reports []models.AcademicYearReport
	if err := query.Order("year DESC").Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reports)
}
