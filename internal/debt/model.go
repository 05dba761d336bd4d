package debt

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudyDebt tracks minutes owed after a planned session was missed. Paid debts
// stay around as an audit trail; they just stop counting as outstanding.
type StudyDebt struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	WorkspaceID      uint            `json:"workspace_id" gorm:"index;not null"`
	CourseID         *uint           `json:"course_id" gorm:"index"`
	PlannedSessionID *uint           `json:"planned_session_id"`
	DurationMinutes  int             `json:"duration_minutes" gorm:"not null"`
	PaidMinutes      int             `json:"paid_minutes" gorm:"not null;default:0"`
	IsPaid           bool            `json:"is_paid" gorm:"not null;default:false"`
	DueDate          time.Time       `json:"due_date"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt  `json:"-" gorm:"index"`
	Repayments       []DebtRepayment `json:"-" gorm:"foreignKey:DebtID"`
}

func (d *StudyDebt) Outstanding() int {
	rem := d.DurationMinutes - d.PaidMinutes
	if rem < 0 {
		return 0
	}
	return rem
}

// DebtRepayment is an append-only log entry. DedupeKey is a deterministic
// UUIDv5 over (debt, session), so a session can repay a given debt only once.
type DebtRepayment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	DebtID        uint      `json:"debt_id" gorm:"index;not null"`
	SessionID     uint      `json:"session_id" gorm:"not null"`
	MinutesRepaid int       `json:"minutes_repaid" gorm:"not null"`
	DedupeKey     string    `json:"-" gorm:"uniqueIndex;size:36;not null"`
	CreatedAt     time.Time `json:"createdAt"`
}

var repaymentNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// RepaymentKey derives the idempotency key for a (debt, session) pair.
func RepaymentKey(debtID, sessionID uint) string {
	name := []byte{
		byte(debtID >> 24), byte(debtID >> 16), byte(debtID >> 8), byte(debtID),
		':',
		byte(sessionID >> 24), byte(sessionID >> 16), byte(sessionID >> 8), byte(sessionID),
	}
	return uuid.NewSHA1(repaymentNamespace, name).String()
}

// ReplayPaid sums the repayment log; must always equal the cached PaidMinutes.
func ReplayPaid(repayments []DebtRepayment) int {
	total := 0
	for _, r := range repayments {
		total += r.MinutesRepaid
	}
	return total
}
