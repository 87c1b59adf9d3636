package feedback

import "errors"

// Resolution workflow failure kinds. Callers classify with errors.Is;
// wrapped detail (gateway messages in particular) travels with the error.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyResolved  = errors.New("feedback already resolved")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUpstreamFailure  = errors.New("upstream failure")
)
