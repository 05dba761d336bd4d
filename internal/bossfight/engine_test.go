package bossfight

import (
	"errors"
	"testing"
	"time"

	"studyforge/internal/workspace"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupFightDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&workspace.Workspace{},
		&workspace.Course{},
		&workspace.Exam{},
		&BossFight{},
		&BossHit{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, table := range []string{"boss_hits", "boss_fights", "exams", "courses", "workspaces"} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
	return dbConn
}

func seedExam(t *testing.T, db *gorm.DB, weight int, date time.Time) workspace.Exam {
	exam := workspace.Exam{WorkspaceID: 1, CourseID: 1, Title: "Final", Date: date, WeightPercent: weight}
	if err := db.Create(&exam).Error; err != nil {
		t.Fatalf("failed to seed exam: %v", err)
	}
	return exam
}

func testEngine(t *testing.T) (*Engine, *gorm.DB) {
	db := setupFightDB(t)
	return NewEngineAt(db, func() time.Time { return testNow }), db
}

func TestMaxHPFor(t *testing.T) {
	cases := []struct {
		weight     int
		difficulty Difficulty
		days       float64
		want       int
	}{
		{30, DifficultyNormal, 14, 300},
		{30, DifficultyEasy, 14, 210},
		{30, DifficultyHard, 14, 390},
		{30, DifficultyNightmare, 14, 480},
		{30, DifficultyNormal, 28, 600},   // time multiplier capped at 2.0
		{30, DifficultyNormal, 56, 600},   // still capped
		{30, DifficultyNormal, 3, 150},    // floored at 0.5
		{0, DifficultyNormal, 14, 200},    // unknown weight defaults to 20
	}
	for _, c := range cases {
		got := MaxHPFor(c.weight, c.difficulty, c.days)
		if got != c.want {
			t.Errorf("MaxHPFor(%d, %s, %.0f) = %d, want %d", c.weight, c.difficulty, c.days, got, c.want)
		}
	}
}

func TestCreate_SetsFullHPAndAlive(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(14*24*time.Hour))

	fight, err := eng.Create(exam.ID, "", DifficultyNormal)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if fight.MaxHP != 300 || fight.CurrentHP != 300 {
		t.Errorf("expected 300/300 HP, got %d/%d", fight.CurrentHP, fight.MaxHP)
	}
	if fight.Status != StatusAlive {
		t.Errorf("expected ALIVE, got %s", fight.Status)
	}
	if fight.Name != "Final" {
		t.Errorf("expected name to default to exam title, got %q", fight.Name)
	}
}

func TestCreate_ExamNotFound(t *testing.T) {
	eng, _ := testEngine(t)
	if _, err := eng.Create(9999, "phantom", DifficultyNormal); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("expected ErrExamNotFound, got %v", err)
	}
}

func TestCreate_ExamDatePassed(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(-time.Hour))
	if _, err := eng.Create(exam.ID, "", DifficultyNormal); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a past exam, got %v", err)
	}
}

func TestCreate_InvalidDifficulty(t *testing.T) {
	eng, _ := testEngine(t)
	if _, err := eng.Create(1, "x", Difficulty("BRUTAL")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestApplyDamage_NormalNoStreak(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(14*24*time.Hour))
	fight, _ := eng.Create(exam.ID, "", DifficultyNormal)

	got, err := eng.ApplyDamage(fight.ID, nil, 50, false)
	if err != nil {
		t.Fatalf("ApplyDamage failed: %v", err)
	}
	if got.CurrentHP != 250 {
		t.Errorf("expected 250 HP after 50 damage, got %d", got.CurrentHP)
	}
	if got.Status != StatusAlive {
		t.Errorf("expected ALIVE, got %s", got.Status)
	}
}

func TestApplyDamage_FactorsAndStreak(t *testing.T) {
	cases := []struct {
		difficulty Difficulty
		minutes    int
		streak     bool
		want       int
	}{
		{DifficultyEasy, 50, false, 60},
		{DifficultyHard, 50, false, 40},
		{DifficultyNightmare, 50, false, 30},
		{DifficultyNormal, 50, true, 60},
		{DifficultyNightmare, 45, true, 32}, // 45*0.6*1.2 = 32.4 → 32
	}
	for _, c := range cases {
		got := damageFor(c.minutes, c.difficulty, c.streak)
		if got != c.want {
			t.Errorf("damageFor(%d, %s, %v) = %d, want %d", c.minutes, c.difficulty, c.streak, got, c.want)
		}
	}
}

func TestApplyHealing_Factors(t *testing.T) {
	cases := []struct {
		difficulty Difficulty
		minutes    int
		want       int
	}{
		{DifficultyEasy, 60, 15},
		{DifficultyNormal, 60, 30},
		{DifficultyHard, 60, 45},
		{DifficultyNightmare, 60, 60},
		{DifficultyNormal, 25, 13}, // 12.5 rounds up
	}
	for _, c := range cases {
		got := healingFor(c.minutes, c.difficulty)
		if got != c.want {
			t.Errorf("healingFor(%d, %s) = %d, want %d", c.minutes, c.difficulty, got, c.want)
		}
	}
}

func TestApplyHealing_ClampsAtMaxHP(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(14*24*time.Hour))
	fight, _ := eng.Create(exam.ID, "", DifficultyNormal)

	// Small dent, then a heal that would overshoot.
	if _, err := eng.ApplyDamage(fight.ID, nil, 10, false); err != nil {
		t.Fatalf("ApplyDamage failed: %v", err)
	}
	got, err := eng.ApplyHealing(fight.ID, 120)
	if err != nil {
		t.Fatalf("ApplyHealing failed: %v", err)
	}
	if got.CurrentHP != got.MaxHP {
		t.Errorf("expected HP clamped to max %d, got %d", got.MaxHP, got.CurrentHP)
	}
}

func TestDefeat_IsTerminal(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(14*24*time.Hour))
	fight, _ := eng.Create(exam.ID, "", DifficultyNormal)

	// 300 HP, six 50-minute sessions bring it to exactly 0.
	var last *BossFight
	for i := 0; i < 6; i++ {
		var err error
		last, err = eng.ApplyDamage(fight.ID, nil, 50, false)
		if err != nil {
			t.Fatalf("ApplyDamage %d failed: %v", i, err)
		}
	}
	if last.CurrentHP != 0 || last.Status != StatusDefeated {
		t.Fatalf("expected 0 HP DEFEATED, got %d %s", last.CurrentHP, last.Status)
	}

	if _, err := eng.ApplyHealing(fight.ID, 60); !errors.Is(err, ErrFightConcluded) {
		t.Errorf("expected ErrFightConcluded on healing a defeated boss, got %v", err)
	}
	if _, err := eng.ApplyDamage(fight.ID, nil, 30, false); !errors.Is(err, ErrFightConcluded) {
		t.Errorf("expected ErrFightConcluded on damaging a defeated boss, got %v", err)
	}
	got, _ := eng.Get(fight.ID)
	if got.Status != StatusDefeated || got.CurrentHP != 0 {
		t.Errorf("terminal state drifted: %d %s", got.CurrentHP, got.Status)
	}
}

func TestEscape_WhenExamDatePassed(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(-24*time.Hour))
	fight := BossFight{ExamID: exam.ID, Name: "Gone", Difficulty: DifficultyNormal, MaxHP: 300, CurrentHP: 300, Status: StatusAlive}
	if err := eng.db.Create(&fight).Error; err != nil {
		t.Fatalf("failed to seed fight: %v", err)
	}

	// The first hit after the exam date is already too late: rejected, and
	// ESCAPED is persisted without touching HP.
	if _, err := eng.ApplyDamage(fight.ID, nil, 50, false); !errors.Is(err, ErrFightConcluded) {
		t.Fatalf("expected ErrFightConcluded after exam date, got %v", err)
	}
	var stored BossFight
	if err := eng.db.First(&stored, fight.ID).Error; err != nil {
		t.Fatalf("failed to reload fight: %v", err)
	}
	if stored.Status != StatusEscaped {
		t.Errorf("expected ESCAPED persisted, got %s", stored.Status)
	}
	if stored.CurrentHP != 300 {
		t.Errorf("HP must not move after the exam date, got %d", stored.CurrentHP)
	}

	if _, err := eng.ApplyHealing(fight.ID, 60); !errors.Is(err, ErrFightConcluded) {
		t.Errorf("expected ErrFightConcluded after escape, got %v", err)
	}
}

func TestGet_RecomputesEscapedStatus(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(-24*time.Hour))
	fight := BossFight{ExamID: exam.ID, Name: "Gone", Difficulty: DifficultyNormal, MaxHP: 300, CurrentHP: 140, Status: StatusAlive}
	if err := eng.db.Create(&fight).Error; err != nil {
		t.Fatalf("failed to seed fight: %v", err)
	}

	got, err := eng.Get(fight.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusEscaped {
		t.Errorf("expected ESCAPED on read after exam date, got %s", got.Status)
	}
	var stored BossFight
	if err := eng.db.First(&stored, fight.ID).Error; err != nil {
		t.Fatalf("failed to reload fight: %v", err)
	}
	if stored.Status != StatusEscaped {
		t.Errorf("recomputed status was not persisted, got %s", stored.Status)
	}
}

func TestDefeat_WinsOverEscape(t *testing.T) {
	// Exam date in the past but the killing blow lands: DEFEATED, not ESCAPED.
	if s := statusFor(0, testNow.Add(-time.Hour), testNow); s != StatusDefeated {
		t.Errorf("expected DEFEATED, got %s", s)
	}
}

func TestHitLog_ReplayMatchesCurrentHP(t *testing.T) {
	eng, _ := testEngine(t)
	exam := seedExam(t, eng.db, 30, testNow.Add(14*24*time.Hour))
	fight, _ := eng.Create(exam.ID, "", DifficultyHard)

	if _, err := eng.ApplyDamage(fight.ID, nil, 50, false); err != nil {
		t.Fatalf("damage: %v", err)
	}
	if _, err := eng.ApplyHealing(fight.ID, 30); err != nil {
		t.Fatalf("heal: %v", err)
	}
	if _, err := eng.ApplyDamage(fight.ID, nil, 90, true); err != nil {
		t.Fatalf("damage: %v", err)
	}

	got, err := eng.Get(fight.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if replayed := ReplayHP(got.MaxHP, got.Hits); replayed != got.CurrentHP {
		t.Errorf("replayed HP %d does not match stored %d", replayed, got.CurrentHP)
	}
	if got.CurrentHP < 0 || got.CurrentHP > got.MaxHP {
		t.Errorf("HP %d outside [0, %d]", got.CurrentHP, got.MaxHP)
	}
}

func TestApplyDamage_InvalidMinutes(t *testing.T) {
	eng, _ := testEngine(t)
	if _, err := eng.ApplyDamage(1, nil, 0, false); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero minutes, got %v", err)
	}
	if _, err := eng.ApplyHealing(1, -5); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative minutes, got %v", err)
	}
}

func TestApplyDamage_FightNotFound(t *testing.T) {
	eng, _ := testEngine(t)
	if _, err := eng.ApplyDamage(4242, nil, 30, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
