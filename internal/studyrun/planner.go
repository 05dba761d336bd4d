package studyrun

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("study run not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrRunInactive      = errors.New("study run is not active")
)

const (
	minDaysPerWeek     = 1
	maxDaysPerWeek     = 7
	minSessionMinutes  = 15
	maxSessionMinutes  = 180
)

type Planner struct {
	db     *gorm.DB
	now    func() time.Time
	topics TopicSuggester
}

func NewPlanner(db *gorm.DB) *Planner {
	return &Planner{db: db, now: time.Now, topics: goalTopicSuggester{}}
}

// NewPlannerWith allows a fixed clock and a custom topic strategy (tests,
// future content sources).
func NewPlannerWith(db *gorm.DB, now func() time.Time, topics TopicSuggester) *Planner {
	if topics == nil {
		topics = goalTopicSuggester{}
	}
	return &Planner{db: db, now: now, topics: topics}
}

// GenerateWeeks partitions [startDate, endDate] into sequential 7-day windows
// at day granularity, numbered from 1. The last window is truncated to endDate.
// Both bounds are taken at midnight; endDate <= startDate yields no weeks.
func GenerateWeeks(startDate, endDate time.Time, daysPerWeek, minutesPerSession int, goal GoalType, topics TopicSuggester) []StudyRunWeek {
	if topics == nil {
		topics = goalTopicSuggester{}
	}
	start := midnight(startDate)
	end := midnight(endDate)

	var weeks []StudyRunWeek
	for num, ws := 1, start; !ws.After(end); num, ws = num+1, ws.AddDate(0, 0, 7) {
		we := ws.AddDate(0, 0, 6)
		if we.After(end) {
			we = end
		}
		w := StudyRunWeek{
			WeekNumber:     num,
			StartDate:      ws,
			EndDate:        we,
			TargetSessions: daysPerWeek,
			TargetMinutes:  daysPerWeek * minutesPerSession,
			Status:         WeekPending,
		}
		w.SetTopics(topics.SuggestTopics(num, goal))
		weeks = append(weeks, w)
	}
	return weeks
}

// CreateRun validates the inputs and creates the run with its full
// week set in one transaction.
func (p *Planner) CreateRun(workspaceID, courseID uint, goal GoalType, targetGrade, description string, startDate, endDate time.Time, daysPerWeek, minutesPerSession int) (*StudyRun, error) {
	if !goal.Valid() {
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrInvalidArgument, goal)
	}
	if !midnight(endDate).After(midnight(startDate)) {
		return nil, ErrInvalidDateRange
	}
	if daysPerWeek < minDaysPerWeek || daysPerWeek > maxDaysPerWeek {
		return nil, fmt.Errorf("%w: days per week must be within %d-%d", ErrInvalidArgument, minDaysPerWeek, maxDaysPerWeek)
	}
	if minutesPerSession < minSessionMinutes || minutesPerSession > maxSessionMinutes {
		return nil, fmt.Errorf("%w: minutes per session must be within %d-%d", ErrInvalidArgument, minSessionMinutes, maxSessionMinutes)
	}

	run := StudyRun{
		WorkspaceID:          workspaceID,
		CourseID:             courseID,
		GoalType:             goal,
		TargetGrade:          targetGrade,
		Description:          description,
		StartDate:            midnight(startDate),
		EndDate:              midnight(endDate),
		PreferredDaysPerWeek: daysPerWeek,
		MinutesPerSession:    minutesPerSession,
		IsActive:             true,
	}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		weeks := GenerateWeeks(run.StartDate, run.EndDate, daysPerWeek, minutesPerSession, goal, p.topics)
		for i := range weeks {
			weeks[i].StudyRunID = run.ID
		}
		if err := tx.Create(&weeks).Error; err != nil {
			return err
		}
		run.Weeks = weeks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ProgressOutcome reports what RecordSessionProgress did. Matched is false
// when the session date fell outside every week; that is data outside the
// run's span, not an error.
type ProgressOutcome struct {
	Matched bool          `json:"matched"`
	Week    *StudyRunWeek `json:"week,omitempty"`
}

// RecordSessionProgress credits a completed session to the week containing its
// date and recomputes every week's status inside the same transaction. The
// counter update is guarded on the values read, so concurrent sessions against
// the same run never lose an increment.
func (p *Planner) RecordSessionProgress(runID uint, sessionMinutes int, sessionDate time.Time) (*ProgressOutcome, error) {
	if sessionMinutes <= 0 {
		return nil, fmt.Errorf("%w: session minutes must be positive", ErrInvalidArgument)
	}
	outcome := &ProgressOutcome{}
	err := p.db.Transaction(func(tx *gorm.DB) error {
		var run StudyRun
		if err := tx.First(&run, runID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !run.IsActive {
			return ErrRunInactive
		}
		var weeks []StudyRunWeek
		if err := tx.Where("study_run_id = ?", runID).Order("week_number ASC").Find(&weeks).Error; err != nil {
			return err
		}

		var touched *StudyRunWeek
		for i := range weeks {
			if weeks[i].Contains(sessionDate) {
				touched = &weeks[i]
				break
			}
		}
		if touched != nil {
			prevSessions, prevMinutes := touched.CompletedSessions, touched.CompletedMinutes
			touched.CompletedSessions = prevSessions + 1
			touched.CompletedMinutes = prevMinutes + sessionMinutes
			res := tx.Model(&StudyRunWeek{}).
				Where("id = ? AND completed_sessions = ? AND completed_minutes = ?", touched.ID, prevSessions, prevMinutes).
				Updates(map[string]interface{}{
					"completed_sessions": touched.CompletedSessions,
					"completed_minutes":  touched.CompletedMinutes,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("study run week %d changed concurrently", touched.ID)
			}
		}

		// Statuses of untouched weeks can shift too as the clock moves, so
		// every week is recomputed and persisted.
		now := p.now()
		for i := range weeks {
			fresh := StatusFor(&weeks[i], now)
			if fresh == weeks[i].Status {
				continue
			}
			weeks[i].Status = fresh
			if err := tx.Model(&StudyRunWeek{}).Where("id = ?", weeks[i].ID).
				Update("status", fresh).Error; err != nil {
				return err
			}
		}
		if touched != nil {
			outcome.Matched = true
			outcome.Week = touched
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Progress returns the run's roll-up with statuses recomputed now; the stored
// status column is never trusted on reads.
func (p *Planner) Progress(runID uint) (*StudyRun, *RunProgress, error) {
	var run StudyRun
	err := p.db.Preload("Weeks", func(db *gorm.DB) *gorm.DB {
		return db.Order("week_number ASC")
	}).First(&run, runID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	progress := RollUp(run.Weeks, p.now())
	run.Weeks = progress.Weeks
	return &run, &progress, nil
}

// Deactivate soft-disables a run; weeks and history remain.
func (p *Planner) Deactivate(runID uint) error {
	res := p.db.Model(&StudyRun{}).Where("id = ?", runID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveRunForCourse returns the newest active run for a course, or ErrNotFound.
func (p *Planner) ActiveRunForCourse(courseID uint) (*StudyRun, error) {
	var run StudyRun
	err := p.db.Where("course_id = ? AND is_active = ?", courseID, true).
		Order("id DESC").First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}
