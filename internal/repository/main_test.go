package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"forum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupTestDB opens an in-memory SQLite database with the forum schema.
func setupTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Post{},
		&models.Comment{},
		&models.PostReport{},
		&models.CommentReport{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hash",
	}
	require.NoError(t, NewUserRepository(db).CreateWithProfile(context.Background(), user))
	return user
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     title,
		Text:      "body of " + title,
		AuthorID:  author.ID,
		Active:    true,
		CreatedAt: createdAt,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}

func createComment(t *testing.T, db *gorm.DB, author *models.User, post *models.Post, text string, createdAt time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Text:      text,
		AuthorID:  author.ID,
		PostID:    post.ID,
		Active:    true,
		CreatedAt: createdAt,
	}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), comment))
	return comment
}
