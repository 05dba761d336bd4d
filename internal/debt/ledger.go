package debt

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("study debt not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyPaid        = errors.New("debt already paid")
	ErrDuplicateRepayment = errors.New("session already repaid this debt")
)

type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

func NewLedgerAt(db *gorm.DB, now func() time.Time) *Ledger {
	return &Ledger{db: db, now: now}
}

// CreateDebt records minutes owed for a missed planned session.
func (l *Ledger) CreateDebt(workspaceID uint, courseID, plannedSessionID *uint, durationMinutes int, dueDate time.Time) (*StudyDebt, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidArgument)
	}
	d := StudyDebt{
		WorkspaceID:      workspaceID,
		CourseID:         courseID,
		PlannedSessionID: plannedSessionID,
		DurationMinutes:  durationMinutes,
		DueDate:          dueDate,
	}
	if err := l.db.Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// RepayResult reports what a repayment actually did. Applied can be smaller
// than the requested minutes when the debt had less outstanding than offered.
type RepayResult struct {
	Debt    *StudyDebt `json:"debt"`
	Applied int        `json:"applied_minutes"`
}

// Repay applies a session's minutes to a debt. The amount is clamped to the
// outstanding remainder; over-repayment has no meaning in the ledger. A second
// call for the same (debt, session) pair is rejected.
func (l *Ledger) Repay(debtID, sessionID uint, minutesRepaid int) (*RepayResult, error) {
	if minutesRepaid <= 0 {
		return nil, fmt.Errorf("%w: repayment must be positive", ErrInvalidArgument)
	}
	var result RepayResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var d StudyDebt
		if err := tx.First(&d, debtID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if d.IsPaid {
			return ErrAlreadyPaid
		}
		key := RepaymentKey(debtID, sessionID)
		var dup int64
		if err := tx.Model(&DebtRepayment{}).Where("dedupe_key = ?", key).Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateRepayment
		}

		applied := minutesRepaid
		if rem := d.Outstanding(); applied > rem {
			applied = rem
		}
		prevPaid := d.PaidMinutes
		d.PaidMinutes = prevPaid + applied
		d.IsPaid = d.PaidMinutes >= d.DurationMinutes

		res := tx.Model(&StudyDebt{}).
			Where("id = ? AND paid_minutes = ?", d.ID, prevPaid).
			Updates(map[string]interface{}{"paid_minutes": d.PaidMinutes, "is_paid": d.IsPaid})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("study debt %d changed concurrently", d.ID)
		}
		rep := DebtRepayment{
			DebtID:        d.ID,
			SessionID:     sessionID,
			MinutesRepaid: applied,
			DedupeKey:     key,
		}
		if err := tx.Create(&rep).Error; err != nil {
			return err
		}
		result = RepayResult{Debt: &d, Applied: applied}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Outstanding lists a workspace's unpaid debts, oldest first.
func (l *Ledger) Outstanding(workspaceID uint) ([]StudyDebt, error) {
	var debts []StudyDebt
	err := l.db.Where("workspace_id = ? AND is_paid = ?", workspaceID, false).
		Order("created_at ASC, id ASC").Find(&debts).Error
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// Summary aggregates a workspace's unpaid debts for display.
type Summary struct {
	TotalOutstandingMinutes int            `json:"total_outstanding_minutes"`
	UnpaidCount             int            `json:"unpaid_count"`
	OldestDebtAgeDays       int            `json:"oldest_debt_age_days"`
	ByCourse                map[uint]int   `json:"by_course"`
}

// Summarize reports outstanding totals. Courses with nothing outstanding are
// omitted from the breakdown; debts without a course are not broken down.
func (l *Ledger) Summarize(workspaceID uint) (*Summary, error) {
	debts, err := l.Outstanding(workspaceID)
	if err != nil {
		return nil, err
	}
	s := Summary{ByCourse: make(map[uint]int)}
	var oldest time.Time
	for _, d := range debts {
		rem := d.Outstanding()
		s.TotalOutstandingMinutes += rem
		s.UnpaidCount++
		if oldest.IsZero() || d.CreatedAt.Before(oldest) {
			oldest = d.CreatedAt
		}
		if d.CourseID != nil && rem > 0 {
			s.ByCourse[*d.CourseID] += rem
		}
	}
	if !oldest.IsZero() {
		s.OldestDebtAgeDays = int(l.now().Sub(oldest).Hours() / 24)
	}
	return &s, nil
}
