package workspace

import (
	"time"

	"gorm.io/gorm"
)

// Workspace is the per-student container all study records hang off.
type Workspace struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:64;not null"`
	OwnerID   uint           `json:"owner_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Courses   []Course       `json:"-" gorm:"foreignKey:WorkspaceID"`
}

type Course struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	WorkspaceID uint           `json:"workspace_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:128;not null"`
	TargetGrade string         `json:"target_grade" gorm:"size:16"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Exams       []Exam         `json:"-" gorm:"foreignKey:CourseID"`
}

type Exam struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	WorkspaceID   uint           `json:"workspace_id" gorm:"index;not null"`
	CourseID      uint           `json:"course_id" gorm:"index;not null"`
	Title         string         `json:"title" gorm:"size:128;not null"`
	Date          time.Time      `json:"date" gorm:"not null"`
	WeightPercent int            `json:"weight_percent"` // share of final grade, 0 = unknown
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

type PlannedSessionStatus string

const (
	PlannedSessionPlanned   PlannedSessionStatus = "PLANNED"
	PlannedSessionCompleted PlannedSessionStatus = "COMPLETED"
	PlannedSessionMissed    PlannedSessionStatus = "MISSED"
)

// PlannedSession is a scheduled study slot. When its window elapses without a
// completed session it is marked MISSED and feeds the debt ledger.
type PlannedSession struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	WorkspaceID     uint                 `json:"workspace_id" gorm:"index;not null"`
	CourseID        uint                 `json:"course_id" gorm:"index"`
	ScheduledFor    time.Time            `json:"scheduled_for" gorm:"not null"`
	DurationMinutes int                  `json:"duration_minutes" gorm:"not null"`
	Status          PlannedSessionStatus `json:"status" gorm:"type:varchar(12);not null;default:'PLANNED'"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt       `json:"-" gorm:"index"`
}
