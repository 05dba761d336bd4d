package session

import (
	"errors"
	"fmt"
	"log"
	"time"

	"studyforge/internal/bossfight"
	"studyforge/internal/debt"
	"studyforge/internal/studyrun"
	"studyforge/internal/workspace"

	"gorm.io/gorm"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrPlannedSessionNotFound = errors.New("planned session not found")
	ErrPlannedSessionSettled  = errors.New("planned session already settled")
)

// Streak bonus: at least this many distinct study days in the trailing window.
const (
	streakWindowDays = 7
	streakMinDays    = 3
)

// Dispatcher routes a session event into the three engines. Each engine call
// is isolated: one engine failing is logged and does not undo the others,
// since there is no cross-aggregate ordering guarantee anyway.
type Dispatcher struct {
	db     *gorm.DB
	fights *bossfight.Engine
	debts  *debt.Ledger
	runs   *studyrun.Planner
	now    func() time.Time
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{
		db:     db,
		fights: bossfight.NewEngine(db),
		debts:  debt.NewLedger(db),
		runs:   studyrun.NewPlanner(db),
		now:    time.Now,
	}
}

// NewDispatcherWith wires explicit engines and a fixed clock (tests).
func NewDispatcherWith(db *gorm.DB, fights *bossfight.Engine, debts *debt.Ledger, runs *studyrun.Planner, now func() time.Time) *Dispatcher {
	return &Dispatcher{db: db, fights: fights, debts: debts, runs: runs, now: now}
}

// CompletedOutcome reports what a completed session did across the engines.
type CompletedOutcome struct {
	Session       *StudySession        `json:"session"`
	Streak        bool                 `json:"streak"`
	Fight         *bossfight.BossFight `json:"fight,omitempty"`
	RepaidMinutes int                  `json:"repaid_minutes"`
	RepaidDebts   int                  `json:"repaid_debts"`
	RunMatched    bool                 `json:"run_matched"`
}

// SessionCompleted records the session fact and fans it out: damage to the
// course's active boss fight, repayment of the oldest outstanding debts, and
// progress on the course's active study run.
func (d *Dispatcher) SessionCompleted(workspaceID, courseID uint, minutes int, occurredAt time.Time, note string) (*CompletedOutcome, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidArgument)
	}
	streak := d.hasConsistentStreak(workspaceID, occurredAt)
	s := StudySession{
		WorkspaceID:     workspaceID,
		CourseID:        courseID,
		DurationMinutes: minutes,
		OccurredAt:      occurredAt,
		Note:            note,
	}
	if err := d.db.Create(&s).Error; err != nil {
		return nil, err
	}
	out := &CompletedOutcome{Session: &s, Streak: streak}

	d.damageBoss(out, courseID, &s, minutes, streak)
	d.repayDebts(out, workspaceID, &s, minutes)
	d.advanceRun(out, courseID, minutes, occurredAt)
	return out, nil
}

func (d *Dispatcher) damageBoss(out *CompletedOutcome, courseID uint, s *StudySession, minutes int, streak bool) {
	fight, err := d.activeFightForCourse(courseID)
	if err != nil {
		if !errors.Is(err, bossfight.ErrNotFound) {
			log.Printf("[Dispatcher] boss lookup failed for course %d: %v", courseID, err)
		}
		return
	}
	updated, err := d.fights.ApplyDamage(fight.ID, &s.ID, minutes, streak)
	if err != nil {
		// A concluded fight is stale data, not a reason to fail the session.
		if !errors.Is(err, bossfight.ErrFightConcluded) {
			log.Printf("[Dispatcher] damage failed for fight %d: %v", fight.ID, err)
		}
		return
	}
	out.Fight = updated
}

// repayDebts splits the session's minutes across outstanding debts oldest
// first until the minutes run out.
func (d *Dispatcher) repayDebts(out *CompletedOutcome, workspaceID uint, s *StudySession, minutes int) {
	debts, err := d.debts.Outstanding(workspaceID)
	if err != nil {
		log.Printf("[Dispatcher] debt lookup failed for workspace %d: %v", workspaceID, err)
		return
	}
	remaining := minutes
	for i := range debts {
		if remaining <= 0 {
			break
		}
		res, err := d.debts.Repay(debts[i].ID, s.ID, remaining)
		if err != nil {
			if !errors.Is(err, debt.ErrDuplicateRepayment) && !errors.Is(err, debt.ErrAlreadyPaid) {
				log.Printf("[Dispatcher] repayment failed for debt %d: %v", debts[i].ID, err)
			}
			continue
		}
		remaining -= res.Applied
		out.RepaidMinutes += res.Applied
		out.RepaidDebts++
	}
}

func (d *Dispatcher) advanceRun(out *CompletedOutcome, courseID uint, minutes int, occurredAt time.Time) {
	run, err := d.runs.ActiveRunForCourse(courseID)
	if err != nil {
		if !errors.Is(err, studyrun.ErrNotFound) {
			log.Printf("[Dispatcher] run lookup failed for course %d: %v", courseID, err)
		}
		return
	}
	res, err := d.runs.RecordSessionProgress(run.ID, minutes, occurredAt)
	if err != nil {
		log.Printf("[Dispatcher] progress failed for run %d: %v", run.ID, err)
		return
	}
	out.RunMatched = res.Matched
}

// MissedOutcome reports what settling a missed planned session did.
type MissedOutcome struct {
	Planned *workspace.PlannedSession `json:"planned_session"`
	Debt    *debt.StudyDebt           `json:"debt"`
	Fight   *bossfight.BossFight      `json:"fight,omitempty"`
}

// SessionMissed marks a planned session MISSED, opens a study debt for its
// minutes and lets the course's boss heal.
func (d *Dispatcher) SessionMissed(plannedSessionID uint) (*MissedOutcome, error) {
	var planned workspace.PlannedSession
	if err := d.db.First(&planned, plannedSessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlannedSessionNotFound
		}
		return nil, err
	}
	if planned.Status != workspace.PlannedSessionPlanned {
		return nil, ErrPlannedSessionSettled
	}
	if err := d.db.Model(&workspace.PlannedSession{}).
		Where("id = ? AND status = ?", planned.ID, workspace.PlannedSessionPlanned).
		Update("status", workspace.PlannedSessionMissed).Error; err != nil {
		return nil, err
	}
	planned.Status = workspace.PlannedSessionMissed

	var coursePtr *uint
	if planned.CourseID != 0 {
		c := planned.CourseID
		coursePtr = &c
	}
	dueDate := planned.ScheduledFor.AddDate(0, 0, streakWindowDays)
	owed, err := d.debts.CreateDebt(planned.WorkspaceID, coursePtr, &planned.ID, planned.DurationMinutes, dueDate)
	if err != nil {
		return nil, err
	}
	out := &MissedOutcome{Planned: &planned, Debt: owed}

	if planned.CourseID != 0 {
		fight, err := d.activeFightForCourse(planned.CourseID)
		if err == nil {
			healed, err := d.fights.ApplyHealing(fight.ID, planned.DurationMinutes)
			if err != nil {
				if !errors.Is(err, bossfight.ErrFightConcluded) {
					log.Printf("[Dispatcher] healing failed for fight %d: %v", fight.ID, err)
				}
			} else {
				out.Fight = healed
			}
		}
	}
	return out, nil
}

// activeFightForCourse finds the ALIVE fight attached to the course's next
// exam, nearest exam date first.
func (d *Dispatcher) activeFightForCourse(courseID uint) (*bossfight.BossFight, error) {
	var exams []workspace.Exam
	if err := d.db.Where("course_id = ?", courseID).Order("date ASC").Find(&exams).Error; err != nil {
		return nil, err
	}
	for i := range exams {
		fight, err := d.fights.ActiveFightForExam(exams[i].ID)
		if err == nil {
			return fight, nil
		}
		if !errors.Is(err, bossfight.ErrNotFound) {
			return nil, err
		}
	}
	return nil, bossfight.ErrNotFound
}

// hasConsistentStreak reports whether the workspace logged sessions on at
// least streakMinDays distinct days within the window before occurredAt.
func (d *Dispatcher) hasConsistentStreak(workspaceID uint, occurredAt time.Time) bool {
	windowStart := occurredAt.AddDate(0, 0, -streakWindowDays)
	var sessions []StudySession
	err := d.db.Where("workspace_id = ? AND occurred_at >= ? AND occurred_at < ?", workspaceID, windowStart, occurredAt).
		Find(&sessions).Error
	if err != nil {
		log.Printf("[Dispatcher] streak lookup failed for workspace %d: %v", workspaceID, err)
		return false
	}
	days := make(map[string]struct{})
	for _, s := range sessions {
		days[s.OccurredAt.Format("2006-01-02")] = struct{}{}
	}
	return len(days) >= streakMinDays
}
