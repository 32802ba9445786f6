package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"forum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "forum-api"
	TokenAudience = "forum-client"
)

// Fiber locals written by the auth middleware.
const (
	LocalUserID   = "userID"
	LocalUsername = "username"
	LocalClaims   = "tokenClaims"
)

var (
	ErrMissingToken = errors.New("authorization required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// RevocationStore records token ids that must no longer be accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewTokenManager returns a manager; revoked may be nil to disable revocation checks.
func NewTokenManager(secret string, ttl time.Duration, revoked RevocationStore) *TokenManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

// Issue signs a token for the user.
func (m *TokenManager) Issue(userID uint, username string) (string, TokenClaims, error) {
	if len(m.secret) == 0 {
		return "", TokenClaims{}, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	tc := TokenClaims{
		UserID:    userID,
		Username:  username,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      tc.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      tc.JTI,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", TokenClaims{}, err
	}
	return signed, tc, nil
}

// Parse verifies signature, expiry, issuer, audience and revocation.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return TokenClaims{}, ErrInvalidToken
	}

	tc := TokenClaims{UserID: uint(userID)}
	tc.Username, _ = claims["username"].(string)
	tc.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}

	if tc.JTI != "" && m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, tc.JTI)
		if err != nil {
			Logger.WarnContext(ctx, "token revocation check failed", "error", err)
		} else if revoked {
			return TokenClaims{}, ErrRevokedToken
		}
	}

	return tc, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, tc TokenClaims) error {
	if m.revoked == nil || tc.JTI == "" {
		return nil
	}
	ttl := tc.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revoked.Revoke(ctx, tc.JTI, ttl)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func storeIdentity(c *fiber.Ctx, tc TokenClaims) {
	c.Locals(LocalUserID, tc.UserID)
	c.Locals(LocalUsername, tc.Username)
	c.Locals(LocalClaims, tc)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, tc.UserID))
}

// AuthRequired rejects requests without a valid, unrevoked bearer token.
func AuthRequired(tm *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}

		tc, err := tm.Parse(c.UserContext(), tokenString)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, ErrRevokedToken) {
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError(msg))
		}

		storeIdentity(c, tc)
		return c.Next()
	}
}

// OptionalAuth records the identity of a valid bearer token and otherwise lets
// the request through anonymously.
func OptionalAuth(tm *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := BearerToken(c); tokenString != "" {
			if tc, err := tm.Parse(c.UserContext(), tokenString); err == nil {
				storeIdentity(c, tc)
			}
		}
		return c.Next()
	}
}
