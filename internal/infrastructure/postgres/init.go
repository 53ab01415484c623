package postgres

import (
	"log"

	"github.com/LavaJover/shvark-rotation-service/internal/config"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.RotationConfig) *gorm.DB {
	dsn := cfg.RotationDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.RotationSessionModel{}, &models.StepRecordModel{}, &models.CampaignStatsModel{})

	return db
}
