package auth

import (
	"github.com/google/uuid"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// Permits reports whether principal owns a resource whose owner is owner.
func Permits(principal *types.User, owner uuid.UUID) bool {
	return principal != nil && principal.ID != uuid.Nil && principal.ID == owner
}

// Authorize is Permits as an error: ErrForbidden when the principal is not
// the owner.
func Authorize(principal *types.User, owner uuid.UUID) error {
	if !Permits(principal, owner) {
		return types.ErrForbidden
	}
	return nil
}
