package studyrun

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GoalType string

const (
	GoalAGrade  GoalType = "A_GRADE"
	GoalPass    GoalType = "PASS"
	GoalCatchUp GoalType = "CATCH_UP"
	GoalCustom  GoalType = "CUSTOM"
)

func (g GoalType) Valid() bool {
	switch g {
	case GoalAGrade, GoalPass, GoalCatchUp, GoalCustom:
		return true
	}
	return false
}

type WeekStatus string

const (
	WeekPending   WeekStatus = "PENDING"
	WeekOnTrack   WeekStatus = "ON_TRACK"
	WeekAhead     WeekStatus = "AHEAD"
	WeekBehind    WeekStatus = "BEHIND"
	WeekCompleted WeekStatus = "COMPLETED"
)

// StudyRun is a multi-week plan for one course. Weeks are generated once at
// creation; only their progress counters and status mutate afterward.
type StudyRun struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	WorkspaceID          uint           `json:"workspace_id" gorm:"index;not null"`
	CourseID             uint           `json:"course_id" gorm:"index;not null"`
	GoalType             GoalType       `json:"goal_type" gorm:"type:varchar(10);not null"`
	TargetGrade          string         `json:"target_grade" gorm:"size:16"`
	Description          string         `json:"description" gorm:"size:256"`
	StartDate            time.Time      `json:"start_date" gorm:"not null"`
	EndDate              time.Time      `json:"end_date" gorm:"not null"`
	PreferredDaysPerWeek int            `json:"preferred_days_per_week" gorm:"not null"`
	MinutesPerSession    int            `json:"minutes_per_session" gorm:"not null"`
	IsActive             bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
	Weeks                []StudyRunWeek `json:"weeks,omitempty" gorm:"foreignKey:StudyRunID"`
}

// StudyRunWeek covers the days [StartDate, EndDate], both at midnight of the
// first and last covered day. The final week may be shorter than seven days.
// CompletedSessions and CompletedMinutes only ever increase; Status is a cache
// of the pure status function, rewritten on every progress update.
type StudyRunWeek struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	StudyRunID        uint           `json:"study_run_id" gorm:"index;not null"`
	WeekNumber        int            `json:"week_number" gorm:"not null"`
	StartDate         time.Time      `json:"start_date" gorm:"not null"`
	EndDate           time.Time      `json:"end_date" gorm:"not null"`
	TargetSessions    int            `json:"target_sessions" gorm:"not null"`
	TargetMinutes     int            `json:"target_minutes" gorm:"not null"`
	CompletedSessions int            `json:"completed_sessions" gorm:"not null;default:0"`
	CompletedMinutes  int            `json:"completed_minutes" gorm:"not null;default:0"`
	Status            WeekStatus     `json:"status" gorm:"type:varchar(10);not null;default:'PENDING'"`
	SuggestedTopics   datatypes.JSON `json:"suggested_topics" gorm:"type:jsonb"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func (w *StudyRunWeek) Topics() []string {
	var topics []string
	if len(w.SuggestedTopics) == 0 {
		return topics
	}
	_ = json.Unmarshal(w.SuggestedTopics, &topics)
	return topics
}

func (w *StudyRunWeek) SetTopics(topics []string) {
	raw, _ := json.Marshal(topics)
	w.SuggestedTopics = datatypes.JSON(raw)
}

// Contains reports whether the given date falls inside the week, inclusive on
// both ends. Time-of-day is ignored.
func (w *StudyRunWeek) Contains(date time.Time) bool {
	d := midnight(date)
	return !d.Before(w.StartDate) && !d.After(w.EndDate)
}

// midnight normalizes to the UTC day, so dates carried in other zones land
// in the same week as the run's persisted boundaries.
func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
