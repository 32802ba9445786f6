// Package authz decides whether a requester may mutate a piece of content.
package authz

import (
	"forum/internal/models"
)

// Principal identifies the requester of an operation. The zero value is the
// anonymous principal.
type Principal struct {
	UserID   uint
	Username string
}

// Anonymous returns the principal used for requests without credentials.
func Anonymous() Principal {
	return Principal{}
}

// Authenticated reports whether the principal carries a user identity.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// Owned is implemented by content that has a single owning user.
type Owned interface {
	OwnerID() uint
}

// Authorizer decides whether a principal may update or delete content.
type Authorizer interface {
	CanMutate(p Principal, o Owned) bool
}

// AuthorOnly grants mutation rights to the content's author and nobody else.
type AuthorOnly struct{}

// CanMutate implements Authorizer.
func (AuthorOnly) CanMutate(p Principal, o Owned) bool {
	return p.Authenticated() && o != nil && p.UserID == o.OwnerID()
}

// Require turns a denied CanMutate into an AppError: UNAUTHENTICATED for the
// anonymous principal and FORBIDDEN for everyone else.
func Require(a Authorizer, p Principal, o Owned) error {
	if !p.Authenticated() {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if !a.CanMutate(p, o) {
		return models.NewForbiddenError("Only the author can modify this content")
	}
	return nil
}
