package database

import (
	"fmt"
	"log/slog"

	"github.com/attunelab/welfare-archive/internal/config"
	"github.com/attunelab/welfare-archive/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	slog.Info("Database connected", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	return nil
}

func Migrate() error {
	return DB.AutoMigrate(
		&models.Conversation{},
		&models.WelfareAnalysis{},
	)
}
