package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"forum/internal/models"
	"forum/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env     *testEnv
	alice   *models.User
	bob     *models.User
	post    *models.Post
	comment *models.Comment
}

// newFixture creates a post by alice carrying a comment by bob.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	post := testutil.CreatePost(t, env.db, alice, "original", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	comment := testutil.CreateComment(t, env.db, bob, post, "bob says", time.Now())
	return &fixture{env: env, alice: alice, bob: bob, post: post, comment: comment}
}

func TestEditForm(t *testing.T) {
	f := newFixture(t)

	resp := f.env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/post/%d/update", f.post.ID), token: f.env.token(t, f.alice)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "original", body["post"].(map[string]any)["title"])
	values := body["form"].(map[string]any)["values"].(map[string]any)
	assert.Equal(t, "original", values["title"])
	assert.Equal(t, "body of original", values["text"])

	resp = f.env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/comment/%d/update", f.comment.ID), token: f.env.token(t, f.bob)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	values = decode(t, resp)["form"].(map[string]any)["values"].(map[string]any)
	assert.Equal(t, "bob says", values["text"])
}

func TestOwnedEntity_AccessChecks(t *testing.T) {
	f := newFixture(t)
	postPath := fmt.Sprintf("/post/%d", f.post.ID)
	commentPath := fmt.Sprintf("/comment/%d", f.comment.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"anonymous post edit form", http.MethodGet, postPath + "/update", "", fiber.StatusUnauthorized, models.CodeUnauthenticated},
		{"anonymous post update", http.MethodPost, postPath + "/update", "", fiber.StatusUnauthorized, models.CodeUnauthenticated},
		{"anonymous post delete", http.MethodPost, postPath + "/delete", "", fiber.StatusUnauthorized, models.CodeUnauthenticated},
		{"non-author post edit form", http.MethodGet, postPath + "/update", f.env.token(t, f.bob), fiber.StatusForbidden, models.CodeForbidden},
		{"non-author post update", http.MethodPost, postPath + "/update", f.env.token(t, f.bob), fiber.StatusForbidden, models.CodeForbidden},
		{"non-author post delete confirm", http.MethodGet, postPath + "/delete", f.env.token(t, f.bob), fiber.StatusForbidden, models.CodeForbidden},
		{"non-author post delete", http.MethodPost, postPath + "/delete", f.env.token(t, f.bob), fiber.StatusForbidden, models.CodeForbidden},
		{"non-author comment update", http.MethodPost, commentPath + "/update", f.env.token(t, f.alice), fiber.StatusForbidden, models.CodeForbidden},
		{"non-author comment delete", http.MethodPost, commentPath + "/delete", f.env.token(t, f.alice), fiber.StatusForbidden, models.CodeForbidden},
		{"missing post", http.MethodPost, "/post/999/update", f.env.token(t, f.alice), fiber.StatusNotFound, models.CodeNotFound},
		{"missing comment", http.MethodGet, "/comment/999/delete", f.env.token(t, f.alice), fiber.StatusNotFound, models.CodeNotFound},
		{"non-numeric id", http.MethodGet, "/comment/x/update", f.env.token(t, f.alice), fiber.StatusNotFound, models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.do(t, request{
				method: tt.method,
				path:   tt.path,
				token:  tt.token,
				form:   url.Values{"title": {"hijacked"}, "text": {"hijacked"}},
			})
			assertErrorCode(t, resp, tt.wantStatus, tt.wantCode)
		})
	}

	var post models.Post
	require.NoError(t, f.env.db.First(&post, f.post.ID).Error)
	assert.Equal(t, "original", post.Title)
	var comment models.Comment
	require.NoError(t, f.env.db.First(&comment, f.comment.ID).Error)
	assert.Equal(t, "bob says", comment.Text)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/post/%d/update", f.post.ID)
	testutil.Deactivate(t, f.env.db, f.post)

	resp := f.env.do(t, request{method: http.MethodPost, path: path, token: f.env.token(t, f.alice), form: url.Values{"title": {""}, "text": {"x"}}})
	body := assertErrorCode(t, resp, fiber.StatusBadRequest, models.CodeValidation)
	assert.Contains(t, body["fields"], "title")

	resp = f.env.do(t, request{method: http.MethodPost, path: path, token: f.env.token(t, f.alice), form: url.Values{"title": {"edited"}, "text": {"new body"}, "active": {"true"}}})
	assertRedirect(t, resp, fmt.Sprintf("/post/%d/", f.post.ID))

	var post models.Post
	require.NoError(t, f.env.db.First(&post, f.post.ID).Error)
	assert.Equal(t, "edited", post.Title)
	assert.Equal(t, "new body", post.Text)
	assert.False(t, post.Active)
	assert.True(t, f.post.CreatedAt.Equal(post.CreatedAt.UTC()))
}

func TestUpdateComment(t *testing.T) {
	f := newFixture(t)

	resp := f.env.do(t, request{method: http.MethodPost, path: fmt.Sprintf("/comment/%d/update", f.comment.ID), token: f.env.token(t, f.bob), json: map[string]any{"text": "edited"}})
	assertRedirect(t, resp, fmt.Sprintf("/post/%d/", f.post.ID))

	var comment models.Comment
	require.NoError(t, f.env.db.First(&comment, f.comment.ID).Error)
	assert.Equal(t, "edited", comment.Text)
}

func TestDeleteConfirm(t *testing.T) {
	f := newFixture(t)

	resp := f.env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/post/%d/delete", f.post.ID), token: f.env.token(t, f.alice)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["confirm"])
	assert.Equal(t, "original", body["post"].(map[string]any)["title"])
}

func TestDeletePost_Cascades(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.env.db.Create(&models.CommentReport{CommentID: f.comment.ID, AuthorID: f.alice.ID, Reason: "rude"}).Error)

	resp := f.env.do(t, request{method: http.MethodPost, path: fmt.Sprintf("/post/%d/delete", f.post.ID), token: f.env.token(t, f.alice)})
	assertRedirect(t, resp, "/")

	var n int64
	require.NoError(t, f.env.db.Model(&models.Post{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.env.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.env.db.Model(&models.CommentReport{}).Count(&n).Error)
	assert.Zero(t, n)

	resp = f.env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/post/%d", f.post.ID)})
	assertErrorCode(t, resp, fiber.StatusNotFound, models.CodeNotFound)
}

func TestDeleteComment_RedirectsToPost(t *testing.T) {
	f := newFixture(t)

	resp := f.env.do(t, request{method: http.MethodPost, path: fmt.Sprintf("/comment/%d/delete", f.comment.ID), token: f.env.token(t, f.bob)})
	assertRedirect(t, resp, fmt.Sprintf("/post/%d/", f.post.ID))

	var n int64
	require.NoError(t, f.env.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.env.db.Model(&models.Post{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestReportPost(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/post/%d/report", f.post.ID)

	resp := f.env.do(t, request{method: http.MethodGet, path: path})
	assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthenticated)

	resp = f.env.do(t, request{method: http.MethodGet, path: path, token: f.env.token(t, f.bob)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "post_report", body["form"].(map[string]any)["form"])
	assert.Equal(t, "original", body["post"].(map[string]any)["title"])

	resp = f.env.do(t, request{method: http.MethodPost, path: path, token: f.env.token(t, f.bob), form: url.Values{"reason": {""}}})
	body = assertErrorCode(t, resp, fiber.StatusBadRequest, models.CodeValidation)
	assert.Contains(t, body["fields"], "reason")

	resp = f.env.do(t, request{method: http.MethodPost, path: path, token: f.env.token(t, f.bob), form: url.Values{"reason": {"spam"}}})
	assertRedirect(t, resp, fmt.Sprintf("/post/%d/", f.post.ID))

	var report models.PostReport
	require.NoError(t, f.env.db.First(&report).Error)
	assert.Equal(t, f.post.ID, report.PostID)
	assert.Equal(t, f.bob.ID, report.AuthorID)
	assert.Equal(t, "spam", report.Reason)

	resp = f.env.do(t, request{method: http.MethodPost, path: "/post/999/report", token: f.env.token(t, f.bob), form: url.Values{"reason": {"spam"}}})
	assertErrorCode(t, resp, fiber.StatusNotFound, models.CodeNotFound)
}

func TestReportComment(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/comment/%d/report", f.comment.ID)

	resp := f.env.do(t, request{method: http.MethodPost, path: path, form: url.Values{"reason": {"rude"}}})
	assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthenticated)

	resp = f.env.do(t, request{method: http.MethodGet, path: path, token: f.env.token(t, f.alice)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob says", decode(t, resp)["comment"].(map[string]any)["text"])

	resp = f.env.do(t, request{method: http.MethodPost, path: path, token: f.env.token(t, f.alice), json: map[string]any{"reason": "rude"}})
	assertRedirect(t, resp, fmt.Sprintf("/post/%d/", f.post.ID))

	var n int64
	require.NoError(t, f.env.db.Model(&models.CommentReport{}).Where("comment_id = ?", f.comment.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
