package debt

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setupDebtDB(t *testing.T) *Ledger {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(&StudyDebt{}, &DebtRepayment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, table := range []string{"debt_repayments", "study_debts"} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
	return NewLedgerAt(dbConn, func() time.Time { return testNow })
}

func TestCreateDebt_RejectsNonPositiveDuration(t *testing.T) {
	l := setupDebtDB(t)
	if _, err := l.CreateDebt(1, nil, nil, 0, testNow); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRepay_PartialThenFull(t *testing.T) {
	l := setupDebtDB(t)
	d, err := l.CreateDebt(1, nil, nil, 50, testNow.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}

	r1, err := l.Repay(d.ID, 100, 20)
	if err != nil {
		t.Fatalf("first Repay failed: %v", err)
	}
	if r1.Applied != 20 || r1.Debt.PaidMinutes != 20 || r1.Debt.IsPaid {
		t.Errorf("after first repayment: applied=%d paid=%d isPaid=%v", r1.Applied, r1.Debt.PaidMinutes, r1.Debt.IsPaid)
	}

	r2, err := l.Repay(d.ID, 101, 30)
	if err != nil {
		t.Fatalf("second Repay failed: %v", err)
	}
	if r2.Debt.PaidMinutes != 50 || !r2.Debt.IsPaid {
		t.Errorf("expected fully paid, got paid=%d isPaid=%v", r2.Debt.PaidMinutes, r2.Debt.IsPaid)
	}

	sum, err := l.Summarize(1)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.TotalOutstandingMinutes != 0 || sum.UnpaidCount != 0 {
		t.Errorf("paid debt should not count as outstanding: %+v", sum)
	}
}

func TestRepay_ClampsOverpayment(t *testing.T) {
	l := setupDebtDB(t)
	d, _ := l.CreateDebt(1, nil, nil, 30, testNow)

	r, err := l.Repay(d.ID, 200, 90)
	if err != nil {
		t.Fatalf("Repay failed: %v", err)
	}
	if r.Applied != 30 {
		t.Errorf("expected applied clamped to 30, got %d", r.Applied)
	}
	if r.Debt.PaidMinutes != 30 || !r.Debt.IsPaid {
		t.Errorf("expected paid=30 isPaid=true, got paid=%d isPaid=%v", r.Debt.PaidMinutes, r.Debt.IsPaid)
	}
}

func TestRepay_DuplicateSessionRejected(t *testing.T) {
	l := setupDebtDB(t)
	d, _ := l.CreateDebt(1, nil, nil, 60, testNow)

	if _, err := l.Repay(d.ID, 300, 10); err != nil {
		t.Fatalf("Repay failed: %v", err)
	}
	if _, err := l.Repay(d.ID, 300, 10); !errors.Is(err, ErrDuplicateRepayment) {
		t.Errorf("expected ErrDuplicateRepayment, got %v", err)
	}
}

func TestRepay_AlreadyPaidAndNotFound(t *testing.T) {
	l := setupDebtDB(t)
	d, _ := l.CreateDebt(1, nil, nil, 10, testNow)
	if _, err := l.Repay(d.ID, 1, 10); err != nil {
		t.Fatalf("Repay failed: %v", err)
	}
	if _, err := l.Repay(d.ID, 2, 10); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("expected ErrAlreadyPaid, got %v", err)
	}
	if _, err := l.Repay(999, 1, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := l.Repay(d.ID, 3, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSummarize_BreakdownAndOldestAge(t *testing.T) {
	l := setupDebtDB(t)
	mathID, bioID := uint(7), uint(8)

	older, _ := l.CreateDebt(1, &mathID, nil, 40, testNow)
	if err := l.db.Model(&StudyDebt{}).Where("id = ?", older.ID).
		Update("created_at", testNow.Add(-5*24*time.Hour)).Error; err != nil {
		t.Fatalf("failed to age debt: %v", err)
	}
	l.CreateDebt(1, &bioID, nil, 25, testNow)
	paid, _ := l.CreateDebt(1, &bioID, nil, 15, testNow)
	if _, err := l.Repay(paid.ID, 55, 15); err != nil {
		t.Fatalf("Repay failed: %v", err)
	}
	l.CreateDebt(2, &mathID, nil, 99, testNow) // other workspace

	sum, err := l.Summarize(1)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.TotalOutstandingMinutes != 65 {
		t.Errorf("expected 65 outstanding, got %d", sum.TotalOutstandingMinutes)
	}
	if sum.UnpaidCount != 2 {
		t.Errorf("expected 2 unpaid, got %d", sum.UnpaidCount)
	}
	if sum.OldestDebtAgeDays != 5 {
		t.Errorf("expected oldest age 5 days, got %d", sum.OldestDebtAgeDays)
	}
	if sum.ByCourse[mathID] != 40 || sum.ByCourse[bioID] != 25 {
		t.Errorf("unexpected breakdown: %+v", sum.ByCourse)
	}
	if _, ok := sum.ByCourse[99]; ok {
		t.Errorf("unexpected course in breakdown")
	}
}

func TestRepaymentLog_ReplayMatchesPaidMinutes(t *testing.T) {
	l := setupDebtDB(t)
	d, _ := l.CreateDebt(1, nil, nil, 100, testNow)
	l.Repay(d.ID, 1, 10)
	l.Repay(d.ID, 2, 25)
	l.Repay(d.ID, 3, 40)

	var fresh StudyDebt
	if err := l.db.Preload("Repayments").First(&fresh, d.ID).Error; err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := ReplayPaid(fresh.Repayments); got != fresh.PaidMinutes {
		t.Errorf("replayed paid %d does not match stored %d", got, fresh.PaidMinutes)
	}
}

func TestRepaymentKey_Deterministic(t *testing.T) {
	a := RepaymentKey(12, 34)
	b := RepaymentKey(12, 34)
	c := RepaymentKey(34, 12)
	if a != b {
		t.Errorf("key not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("key collides across swapped ids")
	}
}
