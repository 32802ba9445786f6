// Package service implements the forum operations on top of the repositories.
// Every method takes the requester as an explicit authz.Principal.
package service

import (
	"context"
	"errors"

	"forum/internal/authz"
	"forum/internal/forms"
	"forum/internal/models"
	"forum/internal/observability"
)

// BanChecker reports whether a user is barred from creating content.
type BanChecker func(ctx context.Context, userID uint) (bool, error)

// requireAuthor checks that p may author new content.
func requireAuthor(ctx context.Context, p authz.Principal, isBanned BanChecker) error {
	if !p.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if isBanned == nil {
		return nil
	}
	banned, err := isBanned(ctx, p.UserID)
	if err != nil {
		return err
	}
	if banned {
		return models.NewForbiddenError("Banned users cannot post")
	}
	return nil
}

// requireOwner applies the ownership predicate and counts denials per entity.
func requireOwner(a authz.Authorizer, p authz.Principal, o authz.Owned, entity string) error {
	err := authz.Require(a, p, o)
	if err != nil {
		reason := "forbidden"
		if models.ErrorCode(err) == models.CodeUnauthenticated {
			reason = "unauthenticated"
		}
		observability.AuthorizationDenials.WithLabelValues(entity, reason).Inc()
	}
	return err
}

// requireAuthenticated fails before any lookup when p is anonymous.
func requireAuthenticated(p authz.Principal) error {
	if !p.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}
	return nil
}

func validate(form *forms.Form, raw forms.Values) (forms.Values, error) {
	values, errs := form.Validate(raw)
	if errs != nil {
		return nil, models.NewFieldValidationError(errs)
	}
	return values, nil
}

// FieldErrors extracts per-field validation messages from err, if any.
func FieldErrors(err error) forms.Errors {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation || len(appErr.Fields) == 0 {
		return nil
	}
	return forms.Errors(appErr.Fields)
}
