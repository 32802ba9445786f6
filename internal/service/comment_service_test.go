package service

import (
	"context"
	"testing"
	"time"

	"forum/internal/authz"
	"forum/internal/forms"
	"forum/internal/models"
	"forum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Create(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	post := testutil.CreatePost(t, s.db, alice, "p", time.Now())

	comment, err := s.comments.Create(ctx, principal(bob), post.ID, forms.Values{"text": " nice ", "post": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Text)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, bob.ID, comment.AuthorID)

	detail, err := s.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)
}

func TestCommentService_CreateRejects(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice")
	post := testutil.CreatePost(t, s.db, alice, "p", time.Now())

	_, err := s.comments.Create(ctx, authz.Anonymous(), post.ID, forms.Values{"text": "hi"})
	assertCode(t, models.CodeUnauthenticated, err)

	_, err = s.comments.Create(ctx, principal(alice), post.ID, forms.Values{"text": "   "})
	assertCode(t, models.CodeValidation, err)
	assert.Equal(t, []string{"This field is required."}, FieldErrors(err)["text"])

	_, err = s.comments.Create(ctx, principal(alice), post.ID+1, forms.Values{"text": "hi"})
	assertCode(t, models.CodeNotFound, err)

	assert.Zero(t, countRows(t, s.db, &models.Comment{}))
}

func TestCommentService_UpdateAndDelete(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	post := testutil.CreatePost(t, s.db, alice, "p", time.Now())
	comment := testutil.CreateComment(t, s.db, bob, post, "orig", time.Now())

	_, err := s.comments.Update(ctx, principal(alice), comment.ID, forms.Values{"text": "edited"})
	assertCode(t, models.CodeForbidden, err)
	_, err = s.comments.Delete(ctx, principal(alice), comment.ID)
	assertCode(t, models.CodeForbidden, err)
	_, err = s.comments.Update(ctx, authz.Anonymous(), comment.ID, forms.Values{"text": "edited"})
	assertCode(t, models.CodeUnauthenticated, err)

	updated, err := s.comments.Update(ctx, principal(bob), comment.ID, forms.Values{"text": "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	_, _, err = s.reports.ReportComment(ctx, principal(alice), comment.ID, forms.Values{"reason": "meh"})
	require.NoError(t, err)

	deleted, err := s.comments.Delete(ctx, principal(bob), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.PostID)
	assert.Zero(t, countRows(t, s.db, &models.Comment{}))
	assert.Zero(t, countRows(t, s.db, &models.CommentReport{}))

	_, err = s.comments.Delete(ctx, principal(bob), comment.ID)
	assertCode(t, models.CodeNotFound, err)
}
