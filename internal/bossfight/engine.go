package bossfight

import (
	"errors"
	"fmt"
	"math"
	"time"

	"studyforge/internal/workspace"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("boss fight not found")
	ErrExamNotFound    = errors.New("exam not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrFightConcluded  = errors.New("fight already concluded")
)

// Harder bosses have more HP and a longer runway inflates it further.
var hpMultiplier = map[Difficulty]float64{
	DifficultyEasy:      0.7,
	DifficultyNormal:    1.0,
	DifficultyHard:      1.3,
	DifficultyNightmare: 1.6,
}

// Harder bosses take less damage per study minute, so fights don't end early.
var damageFactor = map[Difficulty]float64{
	DifficultyEasy:      1.2,
	DifficultyNormal:    1.0,
	DifficultyHard:      0.8,
	DifficultyNightmare: 0.6,
}

// Harder bosses heal more per skipped minute, symmetric with damage.
var healingFactor = map[Difficulty]float64{
	DifficultyEasy:      0.5,
	DifficultyNormal:    1.0,
	DifficultyHard:      1.5,
	DifficultyNightmare: 2.0,
}

const (
	defaultExamWeight = 20
	streakBonus       = 1.2
)

// MaxHPFor computes a fight's hit points from exam weight, difficulty and time
// until the exam. weightPercent <= 0 means the weight is unknown.
func MaxHPFor(weightPercent int, difficulty Difficulty, daysUntilExam float64) int {
	if weightPercent <= 0 {
		weightPercent = defaultExamWeight
	}
	timeMult := daysUntilExam / 14.0
	if timeMult < 0.5 {
		timeMult = 0.5
	}
	if timeMult > 2.0 {
		timeMult = 2.0
	}
	return int(math.Round(float64(weightPercent) * 10 * hpMultiplier[difficulty] * timeMult))
}

func damageFor(sessionMinutes int, difficulty Difficulty, consistentStreak bool) int {
	dmg := float64(sessionMinutes) * 1.0 * damageFactor[difficulty]
	if consistentStreak {
		dmg *= streakBonus
	}
	return int(math.Round(dmg))
}

func healingFor(missedMinutes int, difficulty Difficulty) int {
	return int(math.Round(float64(missedMinutes) * 0.5 * healingFactor[difficulty]))
}

// statusFor evaluates the state machine after an HP mutation. Defeat wins over
// escape when both conditions hold.
func statusFor(currentHP int, examDate, now time.Time) Status {
	if currentHP <= 0 {
		return StatusDefeated
	}
	if now.After(examDate) {
		return StatusEscaped
	}
	return StatusAlive
}

type Engine struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// NewEngineAt builds an engine with a fixed clock (tests).
func NewEngineAt(db *gorm.DB, now func() time.Time) *Engine {
	return &Engine{db: db, now: now}
}

// Create starts a fight against the given exam at the chosen difficulty.
func (e *Engine) Create(examID uint, name string, difficulty Difficulty) (*BossFight, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, difficulty)
	}
	var exam workspace.Exam
	if err := e.db.First(&exam, examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	if e.now().After(exam.Date) {
		return nil, fmt.Errorf("%w: exam date has already passed", ErrInvalidArgument)
	}
	days := exam.Date.Sub(e.now()).Hours() / 24
	maxHP := MaxHPFor(exam.WeightPercent, difficulty, days)
	if name == "" {
		name = exam.Title
	}
	fight := BossFight{
		ExamID:     examID,
		Name:       name,
		Difficulty: difficulty,
		MaxHP:      maxHP,
		CurrentHP:  maxHP,
		Status:     StatusAlive,
	}
	if err := e.db.Create(&fight).Error; err != nil {
		return nil, err
	}
	return &fight, nil
}

// ApplyDamage records a completed study session against the fight.
func (e *Engine) ApplyDamage(fightID uint, sessionID *uint, sessionMinutes int, consistentStreak bool) (*BossFight, error) {
	if sessionMinutes <= 0 {
		return nil, fmt.Errorf("%w: session minutes must be positive", ErrInvalidArgument)
	}
	return e.applyHit(fightID, func(fight *BossFight) (int, string) {
		dmg := damageFor(sessionMinutes, fight.Difficulty, consistentStreak)
		desc := fmt.Sprintf("%d min of study dealt %d damage", sessionMinutes, dmg)
		if consistentStreak {
			desc += " (streak bonus)"
		}
		return dmg, desc
	}, sessionID)
}

// ApplyHealing records a skipped planned session; the boss recovers HP.
func (e *Engine) ApplyHealing(fightID uint, missedMinutes int) (*BossFight, error) {
	if missedMinutes <= 0 {
		return nil, fmt.Errorf("%w: missed minutes must be positive", ErrInvalidArgument)
	}
	return e.applyHit(fightID, func(fight *BossFight) (int, string) {
		heal := healingFor(missedMinutes, fight.Difficulty)
		return -heal, fmt.Sprintf("skipped %d min, boss healed %d HP", missedMinutes, heal)
	}, nil)
}

// applyHit loads the fight, applies a signed hit, clamps HP, appends the log
// row and persists the recomputed status, all in one transaction. The write is
// guarded on the HP value read so concurrent hits against the same fight never
// lose an update. Terminality is evaluated against the clock, not just the
// stored column: a fight whose exam date has passed rejects the hit and gets
// ESCAPED persisted, so HP never moves after the exam.
func (e *Engine) applyHit(fightID uint, compute func(*BossFight) (int, string), sessionID *uint) (*BossFight, error) {
	var fight BossFight
	var concluded bool
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&fight, fightID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if fight.Status != StatusAlive {
			concluded = true
			return nil
		}
		var exam workspace.Exam
		if err := tx.First(&exam, fight.ExamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExamNotFound
			}
			return err
		}
		if st := statusFor(fight.CurrentHP, exam.Date, e.now()); st != StatusAlive {
			// Returning an error here would roll the escape back, so flag it
			// and translate after commit.
			if err := tx.Model(&BossFight{}).Where("id = ?", fight.ID).
				Update("status", st).Error; err != nil {
				return err
			}
			fight.Status = st
			concluded = true
			return nil
		}

		amount, desc := compute(&fight)
		prevHP := fight.CurrentHP
		hp := prevHP - amount
		if hp < 0 {
			hp = 0
		}
		if hp > fight.MaxHP {
			hp = fight.MaxHP
		}
		fight.CurrentHP = hp
		fight.Status = statusFor(hp, exam.Date, e.now())

		res := tx.Model(&BossFight{}).
			Where("id = ? AND current_hp = ?", fight.ID, prevHP).
			Updates(map[string]interface{}{"current_hp": fight.CurrentHP, "status": fight.Status})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("boss fight %d changed concurrently", fight.ID)
		}
		hit := BossHit{
			BossFightID: fight.ID,
			Amount:      amount,
			SessionID:   sessionID,
			Description: desc,
		}
		return tx.Create(&hit).Error
	})
	if err != nil {
		return nil, err
	}
	if concluded {
		return nil, ErrFightConcluded
	}
	return &fight, nil
}

// Get returns a fight snapshot with its full hit log, ordered oldest first.
// The status is recomputed against the clock on the way out, so a fight whose
// exam date passed since the last write reads as ESCAPED.
func (e *Engine) Get(fightID uint) (*BossFight, error) {
	var fight BossFight
	err := e.db.Preload("Hits", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&fight, fightID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if fight.Status == StatusAlive {
		var exam workspace.Exam
		if err := e.db.First(&exam, fight.ExamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrExamNotFound
			}
			return nil, err
		}
		if st := statusFor(fight.CurrentHP, exam.Date, e.now()); st != fight.Status {
			if err := e.db.Model(&BossFight{}).Where("id = ?", fight.ID).
				Update("status", st).Error; err != nil {
				return nil, err
			}
			fight.Status = st
		}
	}
	return &fight, nil
}

// ActiveFightForExam returns the ALIVE fight for an exam, or ErrNotFound.
func (e *Engine) ActiveFightForExam(examID uint) (*BossFight, error) {
	var fight BossFight
	err := e.db.Where("exam_id = ? AND status = ?", examID, StatusAlive).
		Order("id DESC").First(&fight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fight, nil
}
