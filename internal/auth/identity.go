// Package auth covers credentials and callers: password hashing, signed
// bearer tokens and the ownership check applied before writes.
package auth

import "errors"

var (
	// ErrUnauthenticated is the only error token verification returns to
	// callers; the wrapped cause is for logs.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but does not own the
	// resource.
	ErrForbidden = errors.New("forbidden")
)

// Identity is the caller as carried in a verified token.
type Identity struct {
	ID       uint64
	Username string
	Email    string
}

// Authorize allows the operation only when id owns the resource.
func Authorize(id Identity, ownerID uint64) error {
	if id.ID == 0 || id.ID != ownerID {
		return ErrForbidden
	}
	return nil
}
