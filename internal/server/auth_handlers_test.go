package server

import (
	"net/http"
	"net/url"
	"testing"

	"forum/internal/middleware"
	"forum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Correct-Horse-42"

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name           string
		body           map[string]any
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			body:           map[string]any{"username": "alice", "email": "Alice@Example.com", "password": strongPassword},
			expectedStatus: fiber.StatusCreated,
		},
		{
			name:           "Duplicate Email",
			body:           map[string]any{"username": "alice2", "email": "alice@example.com", "password": strongPassword},
			expectedStatus: fiber.StatusConflict,
			expectedCode:   models.CodeConflict,
		},
		{
			name:           "Duplicate Username",
			body:           map[string]any{"username": "alice", "email": "other@example.com", "password": strongPassword},
			expectedStatus: fiber.StatusConflict,
			expectedCode:   models.CodeConflict,
		},
		{
			name:           "Weak Password",
			body:           map[string]any{"username": "carol", "email": "carol@example.com", "password": "short"},
			expectedStatus: fiber.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, request{method: http.MethodPost, path: "/api/auth/signup", json: tt.body})
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			body := decode(t, resp)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["code"])
				return
			}
			assert.NotEmpty(t, body["token"])
			user := body["user"].(map[string]any)
			assert.Equal(t, "alice", user["username"])
			assert.NotContains(t, user, "password")
		})
	}

	var profiles int64
	require.NoError(t, env.db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, request{method: http.MethodPost, path: "/api/auth/signup", json: map[string]any{
		"username": "alice", "email": "alice@example.com", "password": strongPassword,
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, request{method: http.MethodPost, path: "/api/auth/login", form: url.Values{
		"email": {"alice@example.com"}, "password": {"wrong"},
	}})
	assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthenticated)

	resp = env.do(t, request{method: http.MethodPost, path: "/api/auth/login", json: map[string]any{
		"email": "alice@example.com", "password": strongPassword,
	}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := decode(t, resp)["token"].(string)
	require.NotEmpty(t, token)

	// The issued token authenticates forum writes.
	resp = env.do(t, request{method: http.MethodGet, path: "/post/new", token: token})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, request{method: http.MethodPost, path: "/api/auth/signup", json: map[string]any{
		"username": "alice", "email": "alice@example.com", "password": strongPassword,
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	token := decode(t, resp)["token"].(string)

	resp = env.do(t, request{method: http.MethodPost, path: "/api/auth/logout"})
	assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthenticated)

	resp = env.do(t, request{method: http.MethodPost, path: "/api/auth/logout", token: token})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	claims, err := env.srv.tokens.Parse(t.Context(), token)
	assert.ErrorIs(t, err, middleware.ErrRevokedToken)
	assert.Empty(t, claims.JTI)
	assert.Len(t, env.mr.Keys(), 1)
	assert.Contains(t, env.mr.Keys()[0], "blacklist:")

	// A revoked token falls back to the anonymous principal on forum routes.
	resp = env.do(t, request{method: http.MethodGet, path: "/post/new", token: token})
	assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthenticated)

	resp = env.do(t, request{method: http.MethodPost, path: "/api/auth/logout", token: token})
	body := assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthenticated)
	assert.Equal(t, "Token has been revoked", body["error"])
}
