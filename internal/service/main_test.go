package service

import (
	"context"
	"testing"

	"forum/internal/authz"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type services struct {
	db       *gorm.DB
	posts    *PostService
	comments *CommentService
	reports  *ReportService
	users    *UserService
}

// setupServices wires every service against an in-memory SQLite database.
func setupServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	users := NewUserService(userRepo).WithBcryptCost(bcrypt.MinCost)
	authorizer := authz.AuthorOnly{}

	return &services{
		db:       db,
		posts:    NewPostService(postRepo, commentRepo, userRepo, authorizer, users.IsBanned),
		comments: NewCommentService(commentRepo, postRepo, authorizer, users.IsBanned),
		reports:  NewReportService(reportRepo, postRepo, commentRepo, users.IsBanned),
		users:    users,
	}
}

func principal(u *models.User) authz.Principal {
	return authz.Principal{UserID: u.ID, Username: u.Username}
}

func assertCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), err.Error())
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// postRepoStub is a stub for repository.PostRepository that records calls.
type postRepoStub struct {
	calls     []string
	getByIDFn func(context.Context, uint) (*models.Post, error)
}

func (s *postRepoStub) Create(context.Context, *models.Post) error {
	s.calls = append(s.calls, "Create")
	return nil
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	s.calls = append(s.calls, "GetByID")
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Post", id)
}
func (s *postRepoStub) ListActive(context.Context, int, int) ([]*models.Post, error) {
	s.calls = append(s.calls, "ListActive")
	return nil, nil
}
func (s *postRepoStub) CountActive(context.Context) (int64, error) {
	s.calls = append(s.calls, "CountActive")
	return 0, nil
}
func (s *postRepoStub) ListActiveByAuthor(context.Context, uint, int, int) ([]*models.Post, error) {
	s.calls = append(s.calls, "ListActiveByAuthor")
	return nil, nil
}
func (s *postRepoStub) CountActiveByAuthor(context.Context, uint) (int64, error) {
	s.calls = append(s.calls, "CountActiveByAuthor")
	return 0, nil
}
func (s *postRepoStub) UpdateContent(context.Context, *models.Post) error {
	s.calls = append(s.calls, "UpdateContent")
	return nil
}
func (s *postRepoStub) Delete(context.Context, uint) error {
	s.calls = append(s.calls, "Delete")
	return nil
}
