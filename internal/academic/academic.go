package academic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/school-diary/backend/internal/models"
)

// TopClass is the highest class level; promoting out of it graduates the
// student instead of advancing the class number.
const TopClass = 10

// CredentialDomain is the domain generated student login emails live under.
const CredentialDomain = "schooldiary.com"

// Promote returns the class a student moves to on promotion. The second
// return value is false when the student is not a promotion candidate
// (already graduated, or the class is not a number).
func Promote(class string) (string, bool) {
	n, err := strconv.Atoi(class)
	if err != nil {
		return class, false
	}
	if n >= TopClass {
		return models.ClassGraduate, true
	}
	return strconv.Itoa(n + 1), true
}

// Eligible reports whether a student in the given class can be promoted.
func Eligible(class string) bool {
	_, ok := Promote(class)
	return ok
}

// YearKey derives the "YYYY_YYYY" academic-year key for the April-March
// cycle containing t.
func YearKey(t time.Time) string {
	y := t.Year()
	if t.Month() >= time.April {
		return fmt.Sprintf("%d_%d", y, y+1)
	}
	return fmt.Sprintf("%d_%d", y-1, y)
}

// ClassKey namespaces a student's fee ledger by class year.
func ClassKey(class string) string {
	return "classId" + class
}

// PreviousClassKey returns the ledger key for the class-year before the
// student's current class, used by the previous-pending panel. There is no
// previous key for class 1; a graduated student's previous year is the top
// class.
func PreviousClassKey(class string) (string, bool) {
	if class == models.ClassGraduate {
		return ClassKey(strconv.Itoa(TopClass)), true
	}
	n, err := strconv.Atoi(class)
	if err != nil || n <= 1 {
		return "", false
	}
	return ClassKey(strconv.Itoa(n - 1)), true
}

// ShortName derives a school's abbreviated code from its name initials:
// lowercase, at most five characters.
func ShortName(schoolName string) string {
	var b strings.Builder
	for i, word := range strings.Fields(schoolName) {
		if i == 5 {
			break
		}
		initial := []rune(word)[0]
		b.WriteString(strings.ToLower(string(initial)))
	}
	return b.String()
}

// StudentEmail derives a student's login email from the admission number and
// the school short name.
func StudentEmail(admissionNumber, shortName string) string {
	return fmt.Sprintf("%s@%s.com", admissionNumber, shortName)
}

// TempPassword derives a student's initial password. The formula is public
// and guessable; it is kept because generated credentials are printed on
// admission slips and mailed to parents as-is.
func TempPassword(admissionNumber, shortName string) string {
	return fmt.Sprintf("%s%s@123", admissionNumber, shortName)
}

// SchoolAdminEmail derives the login email provisioned for a school's admin
// account.
func SchoolAdminEmail(shortName string) string {
	return fmt.Sprintf("%s-admin@%s", shortName, CredentialDomain)
}

// SplitAnnualFee splits a total annual fee into two term amounts. Term 1 is
// half the total rounded to two decimals; term 2 absorbs the remainder so
// the terms always sum to the total.
func SplitAnnualFee(total float64) (term1, term2 float64) {
	term1 = math.Round(total/2*100) / 100
	term2 = total - term1
	return term1, term2
}

// NewClassFees builds a fresh fee record for a class year: both terms
// pending with nothing paid.
func NewClassFees(class string, total float64, term1Due, term2Due string, now time.Time) models.ClassFees {
	t1, t2 := SplitAnnualFee(total)
	return models.ClassFees{
		Term1: models.TermFee{
			Amount:     t1,
			PaidAmount: 0,
			Status:     models.FeeStatusPending,
			DueDate:    term1Due,
		},
		Term2: models.TermFee{
			Amount:     t2,
			PaidAmount: 0,
			Status:     models.FeeStatusPending,
			DueDate:    term2Due,
		},
		TotalFee:  total,
		ClassID:   class,
		UpdatedAt: now,
	}
}

// MarkPaid settles a term in full.
func MarkPaid(t *models.TermFee) {
	t.PaidAmount = t.Amount
	t.Status = models.FeeStatusPaid
}

// MarkPending resets a term to unpaid. Any prior partial payment is
// discarded; that matches the product behavior and is flagged as a UX risk,
// not silently corrected here.
func MarkPending(t *models.TermFee) {
	t.PaidAmount = 0
	t.Status = models.FeeStatusPending
}

// ApplyPayment records a partial payment against a term. The term flips to
// paid once the running total covers the amount owed.
func ApplyPayment(t *models.TermFee, payment float64) {
	t.PaidAmount += payment
	if t.PaidAmount >= t.Amount {
		t.Status = models.FeeStatusPaid
	} else {
		t.Status = models.FeeStatusPending
	}
}

// PendingAmount is what remains owed on a term. Overpayment yields a
// negative balance; no clamping is applied.
func PendingAmount(t models.TermFee) float64 {
	return t.Amount - t.PaidAmount
}
