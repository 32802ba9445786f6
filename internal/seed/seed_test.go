package seed

import (
	"testing"
	"time"

	"forum/internal/models"
	"forum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed_CreatesForum(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	opts := Options{
		NumUsers:        4,
		PostsPerUser:    3,
		CommentsPerPost: 2,
		HiddenRatio:     0.5,
		SkipBcrypt:      true,
		RandSeed:        42,
	}
	res, err := Seed(db, opts)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 4, Posts: 12, Comments: 24, Reports: res.Reports}, res)

	var n int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&n).Error)
	assert.Equal(t, int64(4), n)
	require.NoError(t, db.Model(&models.Post{}).Count(&n).Error)
	assert.Equal(t, int64(12), n)

	var hidden int64
	require.NoError(t, db.Model(&models.Post{}).Where("active = ?", false).Count(&hidden).Error)
	var reports int64
	require.NoError(t, db.Model(&models.PostReport{}).Count(&reports).Error)
	assert.Equal(t, hidden, reports)
	assert.Equal(t, int64(res.Reports), reports)

	// Cleaning removes everything before reseeding.
	opts.ShouldClean = true
	opts.NumUsers = 1
	_, err = Seed(db, opts)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestFactory_HashesPassword(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := NewFactory(db, Options{RandSeed: 7})

	user, err := f.CreateUser(func(u *models.User) { u.Username = "demo" })
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))

	var profile models.Profile
	require.NoError(t, db.First(&profile, "user_id = ?", user.ID).Error)
	assert.False(t, profile.Banned)
}

func TestFactory_DryRun(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, MaxDays: 30, SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	post, err := f.CreatePost(user)
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.LessOrEqual(t, len(post.Title), models.PostTitleMaxLength)
	assert.Less(t, time.Since(post.CreatedAt), 31*24*time.Hour)

	comment, err := f.CreateComment(user, post)
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.True(t, comment.CreatedAt.After(post.CreatedAt))
}
