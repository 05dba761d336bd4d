package bossfight

import (
	"time"

	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "EASY"
	DifficultyNormal    Difficulty = "NORMAL"
	DifficultyHard      Difficulty = "HARD"
	DifficultyNightmare Difficulty = "NIGHTMARE"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyNightmare:
		return true
	}
	return false
}

type Status string

const (
	StatusAlive    Status = "ALIVE"
	StatusDefeated Status = "DEFEATED"
	StatusEscaped  Status = "ESCAPED"
)

// BossFight is one exam-preparation campaign rendered as a combat encounter.
// MaxHP is fixed at creation; CurrentHP stays within [0, MaxHP].
type BossFight struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ExamID     uint           `json:"exam_id" gorm:"index;not null"`
	Name       string         `json:"name" gorm:"size:128;not null"`
	Difficulty Difficulty     `json:"difficulty" gorm:"type:varchar(10);not null"`
	MaxHP      int            `json:"max_hp" gorm:"not null"`
	CurrentHP  int            `json:"current_hp" gorm:"not null"`
	Status     Status         `json:"status" gorm:"type:varchar(10);not null;default:'ALIVE'"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	Hits       []BossHit      `json:"-" gorm:"foreignKey:BossFightID"`
}

// BossHit is an append-only log entry. Positive Amount is damage, negative is
// healing. Replaying the log from MaxHP must reconstruct CurrentHP.
type BossHit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	BossFightID uint      `json:"boss_fight_id" gorm:"index;not null"`
	Amount      int       `json:"amount" gorm:"not null"`
	SessionID   *uint     `json:"session_id"`
	Description string    `json:"description" gorm:"size:256"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ReplayHP folds the hit log over the starting HP, clamping after every hit the
// same way the engine does, and returns the reconstructed current HP.
func ReplayHP(maxHP int, hits []BossHit) int {
	hp := maxHP
	for _, h := range hits {
		hp -= h.Amount
		if hp < 0 {
			hp = 0
		}
		if hp > maxHP {
			hp = maxHP
		}
	}
	return hp
}
