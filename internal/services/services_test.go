package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/database"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	hub      *broadcast.Hub
	creators *CreatorService
	stories  *StoryService
	posts    *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	hub := broadcast.NewHub()
	images := NewImageService(db, nil)
	creators := NewCreatorService(db, images, hub)
	return &testEnv{
		db:       db,
		hub:      hub,
		creators: creators,
		stories:  NewStoryService(db, creators, images, hub),
		posts:    NewPostService(db, creators, images, hub),
	}
}

func (e *testEnv) user(t *testing.T, username string) viewer.Viewer {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
	}
	require.NoError(t, e.db.Create(&u).Error)
	return viewer.Viewer{User: &u}
}

func (e *testEnv) creator(t *testing.T, v viewer.Viewer, name, handle string) *models.Creator {
	t.Helper()
	c, err := e.creators.Create(v, name, handle)
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
