package usecase

import "errors"

// Sentinel errors shared by the services. Handlers map these onto HTTP
// statuses, so wrap them with fmt.Errorf("%w: ...") instead of returning
// bare fmt.Errorf values.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
