// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"studyhub/internal/database"
	"studyhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory SQLite database scoped to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewTestRedis starts a miniredis server and returns a client connected to it.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateProfile inserts a user and its profile.
func CreateProfile(t *testing.T, db *gorm.DB, username, fullName string) *models.Profile {
	t.Helper()

	user := &models.User{Email: username + "@example.edu", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &models.Profile{
		ID:         user.ID,
		Username:   username,
		FullName:   fullName,
		Department: "Computer Science",
		AvatarURL:  "https://example.edu/avatars/" + username + ".png",
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

// CreatePost inserts a post authored by authorID, created at the given offset from now.
func CreatePost(t *testing.T, db *gorm.DB, authorID uint, title string, age time.Duration) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:     title,
		Content:   "content of " + title,
		AuthorID:  authorID,
		CreatedAt: time.Now().Add(-age),
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
