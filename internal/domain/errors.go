package domain

import "errors"

// Error kinds returned by the stores. The HTTP layer maps them to status
// codes; the stores never do.
var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrProfileNotFound  = errors.New("profile not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAuthRequired       = errors.New("authentication required")

	ErrCannotDeleteLast   = errors.New("cannot delete last profile")
	ErrAlreadyExists      = errors.New("profile already exists")
	ErrInvalidOrder       = errors.New("invalid profile order")
	ErrVersionConflict    = errors.New("profile was modified, refetch before updating")
	ErrInvalidImageFormat = errors.New("invalid image format")

	ErrBadRequest = errors.New("bad request")
)
