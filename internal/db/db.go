package db

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/config"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

func NewDB(cfg *config.Config, logger zerolog.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.AvailabilityRule{},
		&models.CustomSlot{},
		&models.Booking{},
		&models.Reservation{},
		&models.AuditLog{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate")
	}

	db.Exec(`
        UPDATE users
        SET timezone = ?
        WHERE role = ? AND (timezone IS NULL OR timezone = '')
    `, timezone.DefaultTimezone, models.RoleProvider)

	return db
}
