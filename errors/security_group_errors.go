// errors/security_group_errors.go
package errors

import "errors"

var (
	ErrSecurityGroupNotFound = errors.New("security group not found")
	ErrMalformedEntry        = errors.New("malformed cache entry")
	ErrInternalServer        = errors.New("internal server error")
	ErrInvalidRequest        = errors.New("invalid request parameters")
)
