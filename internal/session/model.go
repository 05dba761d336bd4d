package session

import (
	"time"

	"gorm.io/gorm"
)

// StudySession is the immutable upstream fact the engines consume: a session
// happened, for this course, for this many minutes, at this time.
type StudySession struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	WorkspaceID      uint           `json:"workspace_id" gorm:"index;not null"`
	CourseID         uint           `json:"course_id" gorm:"index;not null"`
	PlannedSessionID *uint          `json:"planned_session_id"`
	DurationMinutes  int            `json:"duration_minutes" gorm:"not null"`
	OccurredAt       time.Time      `json:"occurred_at" gorm:"index;not null"`
	Note             string         `json:"note" gorm:"size:256"`
	CreatedAt        time.Time      `json:"createdAt"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}
