package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Keys of the generated identifiers.
const (
	KeyDeviceID  = "internal_deviceid"
	KeySessionID = "internal_sid"
)

// Identity hands out the persistent device and session identifiers sent to
// the streaming edge. Each is generated once, then read back from the store.
type Identity struct {
	store Store

	mu    sync.Mutex
	cache map[string]string
}

// NewIdentity creates an identity backed by store.
func NewIdentity(store Store) *Identity {
	return &Identity{
		store: store,
		cache: make(map[string]string, 2),
	}
}

// DeviceID returns the persistent device identifier.
func (i *Identity) DeviceID(ctx context.Context) (string, error) {
	return i.get(ctx, KeyDeviceID)
}

// SessionID returns the persistent session identifier.
func (i *Identity) SessionID(ctx context.Context) (string, error) {
	return i.get(ctx, KeySessionID)
}

func (i *Identity) get(ctx context.Context, key string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, ok := i.cache[key]; ok {
		return v, nil
	}

	v, err := i.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	if v == "" {
		v = uuid.NewString()
		if err := i.store.Set(ctx, key, v); err != nil {
			return "", fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	i.cache[key] = v
	return v, nil
}
