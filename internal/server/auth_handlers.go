package server

import (
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. The presented token is revoked until
// it would have expired.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals(middleware.LocalClaims).(middleware.TokenClaims)
	if !ok {
		return respondError(c, models.NewUnauthenticatedError("Authorization required"))
	}

	if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}
