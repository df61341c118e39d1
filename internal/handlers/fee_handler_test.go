package handlers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/models"
)

func TestRosterEntryWithoutLedger(t *testing.T) {
	st := models.Student{
		BaseModel:       models.BaseModel{ID: uuid.New()},
		StudentName:     "Meera Nair",
		AdmissionNumber: "12",
		ClassID:         "4",
		SectionID:       "A",
	}

	entry := rosterEntry(st)
	if entry.Fees.ClassID != "4" {
		t.Errorf("classId = %q, want 4", entry.Fees.ClassID)
	}
	if entry.Fees.Term1.Status != models.FeeStatusPending || entry.Fees.Term2.Status != models.FeeStatusPending {
		t.Errorf("synthesized statuses = %q, %q; both must be pending",
			entry.Fees.Term1.Status, entry.Fees.Term2.Status)
	}
	if entry.Fees.Term1.Amount != 0 || entry.Fees.TotalFee != 0 {
		t.Error("synthesized record must carry zero amounts")
	}
	if entry.PreviousPending != 0 {
		t.Errorf("previous pending = %v, want 0", entry.PreviousPending)
	}
}

func TestRosterEntryWithLedger(t *testing.T) {
	st := models.Student{
		BaseModel: models.BaseModel{ID: uuid.New()},
		ClassID:   "5",
		FeeHistory: models.FeeHistory{
			"classId5": {
				ClassID:  "5",
				TotalFee: 10000,
				Term1:    models.TermFee{Amount: 5000, PaidAmount: 5000, Status: models.FeeStatusPaid},
				Term2:    models.TermFee{Amount: 5000, Status: models.FeeStatusPending},
			},
			"classId4": {
				ClassID:  "4",
				TotalFee: 8000,
				Term1:    models.TermFee{Amount: 4000, PaidAmount: 4000, Status: models.FeeStatusPaid},
				Term2:    models.TermFee{Amount: 4000, PaidAmount: 1000, Status: models.FeeStatusPending},
			},
		},
	}

	entry := rosterEntry(st)
	if entry.Fees.TotalFee != 10000 || entry.Fees.Term1.Status != models.FeeStatusPaid {
		t.Errorf("current class record not used: %+v", entry.Fees)
	}
	if entry.PreviousPending != 3000 {
		t.Errorf("previous pending = %v, want 3000", entry.PreviousPending)
	}
}

func TestPaymentRequestValidation(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	tests := []struct {
		name  string
		req   paymentRequest
		valid bool
	}{
		{"Positive payment", paymentRequest{Term: "term1", Payment: 500}, true},
		{"Zero payment", paymentRequest{Term: "term1", Payment: 0}, false},
		{"Negative payment", paymentRequest{Term: "term2", Payment: -100}, false},
		{"Bad term", paymentRequest{Term: "term3", Payment: 500}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected a validation error")
			}
		})
	}

	if err := v.Struct(termRequest{Term: "term2"}); err != nil {
		t.Errorf("mark paid/pending request must not require a payment: %v", err)
	}
}
