// Package testutil provides shared database fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"forum/internal/database"
	"forum/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens an in-memory SQLite database with the forum schema.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with a default profile. The stored password is
// not a usable hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "not-a-hash",
	}
	require.NoError(t, db.Omit("Profile").Create(user).Error)
	profile := &models.Profile{UserID: user.ID}
	require.NoError(t, db.Create(profile).Error)
	user.Profile = profile
	return user
}

// BanUser sets the banned flag on the user's profile.
func BanUser(t testing.TB, db *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Update("banned", true).Error)
}

// CreatePost inserts an active post by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     title,
		Text:      "body of " + title,
		AuthorID:  author.ID,
		Active:    true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Omit("Author", "Comments", "Reports").Create(post).Error)
	return post
}

// CreateComment inserts an active comment by author on post.
func CreateComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, text string, createdAt time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Text:      text,
		AuthorID:  author.ID,
		PostID:    post.ID,
		Active:    true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Omit("Author", "Post", "Reports").Create(comment).Error)
	return comment
}

// Deactivate clears the active flag of a post or comment. GORM skips zero
// values on insert, so inactive fixtures are created active and then hidden.
func Deactivate(t testing.TB, db *gorm.DB, model any) {
	t.Helper()
	require.NoError(t, db.Model(model).Update("active", false).Error)
}
