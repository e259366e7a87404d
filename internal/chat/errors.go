package chat

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrUpstream         = errors.New("upstream unavailable")
)

// ErrorCode maps an error to the wire-level code sent back to the origin
// connection.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrUpstream):
		return "upstream_unavailable"
	default:
		return "internal"
	}
}
