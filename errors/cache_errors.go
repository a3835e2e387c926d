// errors/cache_errors.go
package errors

import "errors"

var (
	ErrInvalidKey       = errors.New("cache key does not match the schema")
	ErrInvalidEntryData = errors.New("invalid cache entry data")
	ErrCacheUnavailable = errors.New("cache store unavailable")
)
