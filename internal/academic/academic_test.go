package academic

import (
	"testing"
	"time"

	"github.com/school-diary/backend/internal/models"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		name    string
		class   string
		want    string
		offered bool
	}{
		{"Class 1", "1", "2", true},
		{"Class 3", "3", "4", true},
		{"Class 9", "9", "10", true},
		{"Class 10 graduates", "10", "Graduate", true},
		{"Graduate is terminal", "Graduate", "Graduate", false},
		{"Garbage class", "abc", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, offered := Promote(tt.class)
			if offered != tt.offered {
				t.Fatalf("Promote(%q) offered = %v, want %v", tt.class, offered, tt.offered)
			}
			if offered && got != tt.want {
				t.Errorf("Promote(%q) = %q, want %q", tt.class, got, tt.want)
			}
		})
	}
}

func TestEligible(t *testing.T) {
	if Eligible("Graduate") {
		t.Error("graduated students must not be promotion candidates")
	}
	if !Eligible("5") {
		t.Error("class 5 should be eligible")
	}
}

func TestYearKey(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"April starts the cycle", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "2025_2026"},
		{"Mid cycle", time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), "2025_2026"},
		{"December", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2025_2026"},
		{"January belongs to previous cycle", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), "2025_2026"},
		{"March closes the cycle", time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), "2025_2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearKey(tt.date); got != tt.want {
				t.Errorf("YearKey(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestClassKeys(t *testing.T) {
	if got := ClassKey("4"); got != "classId4" {
		t.Errorf("ClassKey(4) = %q", got)
	}

	tests := []struct {
		class string
		want  string
		ok    bool
	}{
		{"5", "classId4", true},
		{"2", "classId1", true},
		{"1", "", false},
		{"Graduate", "classId10", true},
	}
	for _, tt := range tests {
		got, ok := PreviousClassKey(tt.class)
		if ok != tt.ok || got != tt.want {
			t.Errorf("PreviousClassKey(%q) = %q, %v; want %q, %v", tt.class, got, ok, tt.want, tt.ok)
		}
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Delhi Public School", "dps"},
		{"Saint Mary Convent High Secondary School Extra", "smchs"},
		{"Greenwood", "g"},
		{"École Élémentaire", "éé"},
	}
	for _, tt := range tests {
		if got := ShortName(tt.name); got != tt.want {
			t.Errorf("ShortName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDerivedCredentials(t *testing.T) {
	// School with admissions = 5: the next student gets admission number 6.
	if got := StudentEmail("6", "dps"); got != "6@dps.com" {
		t.Errorf("StudentEmail = %q", got)
	}
	if got := TempPassword("6", "dps"); got != "6dps@123" {
		t.Errorf("TempPassword = %q", got)
	}
	if got := SchoolAdminEmail("dps"); got != "dps-admin@schooldiary.com" {
		t.Errorf("SchoolAdminEmail = %q", got)
	}
}

func TestSplitAnnualFee(t *testing.T) {
	tests := []struct {
		total float64
		term1 float64
		term2 float64
	}{
		{10000, 5000, 5000},
		{9999, 4999.50, 4999.50},
		{5001, 2500.50, 2500.50},
		{0, 0, 0},
	}
	for _, tt := range tests {
		t1, t2 := SplitAnnualFee(tt.total)
		if t1 != tt.term1 || t2 != tt.term2 {
			t.Errorf("SplitAnnualFee(%v) = %v, %v; want %v, %v", tt.total, t1, t2, tt.term1, tt.term2)
		}
		if t1+t2 != tt.total {
			t.Errorf("terms for %v do not sum to total: %v + %v", tt.total, t1, t2)
		}
	}
}

func TestMarkPaid(t *testing.T) {
	term := models.TermFee{Amount: 5000, PaidAmount: 2000, Status: models.FeeStatusPending}
	MarkPaid(&term)
	if term.PaidAmount != term.Amount {
		t.Errorf("paidAmount = %v, want %v", term.PaidAmount, term.Amount)
	}
	if term.Status != models.FeeStatusPaid {
		t.Errorf("status = %q, want paid", term.Status)
	}
}

func TestMarkPending(t *testing.T) {
	term := models.TermFee{Amount: 5000, PaidAmount: 3500, Status: models.FeeStatusPaid}
	MarkPending(&term)
	if term.PaidAmount != 0 {
		t.Errorf("paidAmount = %v, want 0 (partial payments are discarded)", term.PaidAmount)
	}
	if term.Status != models.FeeStatusPending {
		t.Errorf("status = %q, want pending", term.Status)
	}
}

func TestApplyPayment(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		prior      float64
		payment    float64
		wantPaid   float64
		wantStatus string
	}{
		{"Partial stays pending", 5000, 0, 2000, 2000, "pending"},
		{"Partial completes the term", 5000, 2000, 3000, 5000, "paid"},
		{"Exact single payment", 5000, 0, 5000, 5000, "paid"},
		{"Overpayment still paid", 5000, 4000, 2000, 6000, "paid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := models.TermFee{Amount: tt.amount, PaidAmount: tt.prior, Status: models.FeeStatusPending}
			ApplyPayment(&term, tt.payment)
			if term.PaidAmount != tt.wantPaid {
				t.Errorf("paidAmount = %v, want %v", term.PaidAmount, tt.wantPaid)
			}
			if term.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", term.Status, tt.wantStatus)
			}
		})
	}
}

func TestPendingAmount(t *testing.T) {
	term := models.TermFee{Amount: 5000, PaidAmount: 2000}
	if got := PendingAmount(term); got != 3000 {
		t.Errorf("PendingAmount = %v, want 3000", got)
	}

	// Overpaid terms go negative; there is no clamp.
	term.PaidAmount = 6000
	if got := PendingAmount(term); got != -1000 {
		t.Errorf("PendingAmount = %v, want -1000", got)
	}
}

func TestNewClassFees(t *testing.T) {
	now := time.Now()
	fees := NewClassFees("4", 10000, "2026-06-15", "2026-12-15", now)

	if fees.Term1.Amount != 5000 || fees.Term2.Amount != 5000 {
		t.Errorf("term amounts = %v, %v", fees.Term1.Amount, fees.Term2.Amount)
	}
	if fees.Term1.Status != models.FeeStatusPending || fees.Term2.Status != models.FeeStatusPending {
		t.Error("new fee records must start pending")
	}
	if fees.Term1.PaidAmount != 0 || fees.Term2.PaidAmount != 0 {
		t.Error("new fee records must start unpaid")
	}
	if fees.ClassID != "4" || fees.TotalFee != 10000 {
		t.Errorf("classId = %q totalFee = %v", fees.ClassID, fees.TotalFee)
	}
	if fees.Term1.DueDate != "2026-06-15" || fees.Term2.DueDate != "2026-12-15" {
		t.Error("due dates not carried through")
	}
}
