package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/techgyan/techgyan-backend/internal/config"
	"github.com/techgyan/techgyan-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Image{},
		&models.Tag{},
		&models.Category{},
		&models.Creator{},
		&models.CreatorFollower{},
		&models.Story{},
		&models.StoryClap{},
		&models.StoryComment{},
		&models.StoryCommentVote{},
		&models.PostPoll{},
		&models.PostImage{},
		&models.Post{},
		&models.PostClap{},
		&models.PostComment{},
		&models.PostCommentVote{},
		&models.PostPollVote{},
		&models.ServerLog{},
	)
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
