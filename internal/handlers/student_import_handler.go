package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/middleware"
	"github.com/school-diary/backend/internal/models"
	"github.com/school-diary/backend/internal/services"
)

// importBatchSize is how many admissions are processed per batch.
const importBatchSize = 10

// templateHeader is the column set the bulk upload template ships with.
const templateHeader = "studentName,class,section,dob,bloodGroup,admissionNumber," +
	"fatherName,fatherPhone,fatherEmail,fatherOccupation," +
	"motherName,motherPhone,motherEmail,motherOccupation,address,totalFee"

type StudentImportHandler struct {
	students *StudentHandler
	validate *validator.Validate
}

func NewStudentImportHandler(students *StudentHandler) *StudentImportHandler {
	return &StudentImportHandler{
		students: students,
		validate: validator.New(),
	}
}

type importRow struct {
	StudentName      string  `json:"studentName" validate:"required"`
	Class            string  `json:"class" validate:"required"`
	Section          string  `json:"section" validate:"required"`
	DOB              string  `json:"dob"`
	BloodGroup       string  `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O- None"`
	AdmissionNumber  string  `json:"admissionNumber"`
	FatherName       string  `json:"fatherName" validate:"required"`
	FatherPhone      string  `json:"fatherPhone" validate:"omitempty,numeric,len=10"`
	FatherEmail      string  `json:"fatherEmail" validate:"omitempty,email"`
	FatherOccupation string  `json:"fatherOccupation"`
	MotherName       string  `json:"motherName"`
	MotherPhone      string  `json:"motherPhone" validate:"omitempty,numeric,len=10"`
	MotherEmail      string  `json:"motherEmail" validate:"omitempty,email"`
	MotherOccupation string  `json:"motherOccupation"`
	Address          string  `json:"address"`
	TotalFee         float64 `json:"totalFee"`
}

type importFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Import admits students in bulk. Every row is validated before any row is
// written; rows that fail validation are reported and skipped. Valid rows
// are admitted in batches, each admission with its own counter transaction,
// and each successful admission triggers a best-effort credential notice.
func (h *StudentImportHandler) Import(c *gin.Context) {
	var req struct {
		SchoolID     uuid.UUID   `json:"school_id" binding:"required"`
		Term1DueDate string      `json:"term1_due_date"`
		Term2DueDate string      `json:"term2_due_date"`
		Rows         []importRow `json:"rows" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scope := middleware.Scope(c); scope != nil && req.SchoolID != *scope {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot import students into another school"})
		return
	}

	var failures []importFailure
	var valid []importRow
	var validRowNums []int
	for i, row := range req.Rows {
		if err := h.validate.Struct(row); err != nil {
			failures = append(failures, importFailure{Row: i + 1, Error: rowError(err)})
			continue
		}
		valid = append(valid, row)
		validRowNums = append(validRowNums, i+1)
	}

	success := 0
	for start := 0; start < len(valid); start += importBatchSize {
		end := start + importBatchSize
		if end > len(valid) {
			end = len(valid)
		}

		for i := start; i < end; i++ {
			row := valid[i]
			student, tempPassword, err := h.students.admit(admitRequest{
				SchoolID:        req.SchoolID,
				StudentName:     row.StudentName,
				ClassID:         row.Class,
				SectionID:       row.Section,
				DOB:             row.DOB,
				BloodGroup:      row.BloodGroup,
				Address:         row.Address,
				AdmissionNumber: row.AdmissionNumber,
				Parents: models.Parents{
					Father: models.ParentContact{
						Name:       row.FatherName,
						Phone:      row.FatherPhone,
						Email:      row.FatherEmail,
						Occupation: row.FatherOccupation,
					},
					Mother: models.ParentContact{
						Name:       row.MotherName,
						Phone:      row.MotherPhone,
						Email:      row.MotherEmail,
						Occupation: row.MotherOccupation,
					},
				},
				TotalFee:     row.TotalFee,
				Term1DueDate: req.Term1DueDate,
				Term2DueDate: req.Term2DueDate,
			})
			if err != nil {
				failures = append(failures, importFailure{Row: validRowNums[i], Error: err.Error()})
				continue
			}

			success++
			h.students.notify.SendCredentials(services.CredentialNotice{
				ToEmail:     student.Parents.Father.Email,
				Username:    student.StudentEmail,
				Password:    tempPassword,
				StudentName: student.StudentName,
				FatherName:  student.Parents.Father.Name,
			})
		}
	}

	if success > 0 {
		h.students.activity.Log(
			fmt.Sprintf("Imported %d students into %s", success, h.students.store.SchoolName(req.SchoolID)),
			"Admin")
		h.students.store.Refresh()
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  success,
		"failed":   len(failures),
		"failures": failures,
	})
}

// Template serves the CSV header operators fill in for a bulk upload.
func (h *StudentImportHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="students_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(templateHeader+"\n"))
}

func rowError(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		v := verrs[0]
		switch v.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", v.Field())
		case "len", "numeric":
			return fmt.Sprintf("%s must be a 10-digit phone number", v.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email", v.Field())
		case "oneof":
			return fmt.Sprintf("%s must be a valid blood group", v.Field())
		}
		return fmt.Sprintf("%s is invalid", v.Field())
	}
	return err.Error()
}
