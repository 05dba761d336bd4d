package db

import (
	"log"

	"studyforge/internal/bossfight"
	"studyforge/internal/config"
	"studyforge/internal/debt"
	"studyforge/internal/session"
	"studyforge/internal/studyrun"
	"studyforge/internal/user"
	"studyforge/internal/workspace"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	conn, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user and workspace models
	if err := conn.AutoMigrate(
		&user.User{},
		&workspace.Workspace{},
		&workspace.Course{},
		&workspace.Exam{},
		&workspace.PlannedSession{},
	); err != nil {
		return err
	}

	// Auto-migrate session facts and the engine aggregates
	if err := conn.AutoMigrate(
		&session.StudySession{},
		&bossfight.BossFight{},
		&bossfight.BossHit{},
		&debt.StudyDebt{},
		&debt.DebtRepayment{},
		&studyrun.StudyRun{},
		&studyrun.StudyRunWeek{},
	); err != nil {
		return err
	}

	DB = conn
	log.Printf("Database connected and migrated")
	return nil
}
