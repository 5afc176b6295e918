// Package settings persists the add-on's internal settings, such as the
// generated device and session identifiers.
package settings

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown settings backend")
	// ErrMissingPath is returned when a file-based backend has no path.
	ErrMissingPath = errors.New("settings path is required")
	// ErrMissingRedisURL is returned when the redis backend has no URL.
	ErrMissingRedisURL = errors.New("redis url is required")
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Store is a string key/value store. Get returns "" and a nil error for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the store for the named backend. path is used by the file
// and bolt backends, redisURL by the redis backend.
func Open(backend, path, redisURL string) (Store, error) {
	switch backend {
	case BackendFile, "":
		if path == "" {
			return nil, ErrMissingPath
		}
		return NewFileStore(path)
	case BackendBolt:
		if path == "" {
			return nil, ErrMissingPath
		}
		return NewBoltStore(path)
	case BackendRedis:
		if redisURL == "" {
			return nil, ErrMissingRedisURL
		}
		return NewRedisStore(redisURL, DefaultRedisPrefix)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}
