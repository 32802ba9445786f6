package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"forum/internal/authz"
	"forum/internal/forms"
	"forum/internal/middleware"
	"forum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint. Anything else cannot
// name a stored row, so it writes a 404 and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError(resource, raw))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// principal returns the requester resolved by the auth middleware.
func principal(c *fiber.Ctx) authz.Principal {
	userID, ok := c.Locals(middleware.LocalUserID).(uint)
	if !ok {
		return authz.Anonymous()
	}
	username, _ := c.Locals(middleware.LocalUsername).(string)
	return authz.Principal{UserID: userID, Username: username}
}

// bindValues reads submitted fields from a JSON object or an urlencoded body.
func bindValues(c *fiber.Ctx) (forms.Values, error) {
	values := forms.Values{}
	body := c.Body()

	if c.Is("json") {
		if len(body) == 0 {
			return values, nil
		}
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		for k, v := range raw {
			switch tv := v.(type) {
			case nil:
			case string:
				values[k] = tv
			default:
				values[k] = fmt.Sprint(tv)
			}
		}
		return values, nil
	}

	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		values[string(k)] = string(v)
	})
	return values, nil
}

// respondError renders err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", err)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// redirect answers a successful mutation.
func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusFound)
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d/", id)
}
