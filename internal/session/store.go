// Package session holds the results of completed wizard steps.
// Steps never talk to each other directly: each one reads the records it
// depends on from the session and writes its own record back on success.
// The Store interface is the port; MemoryStore and FileStore are adapters.
package session

import (
	"context"
	"errors"
)

// Key names one persisted record.
type Key string

// Recognized session keys.
const (
	KeySessionID   Key = "sessionId"
	KeyProduct     Key = "productData"
	KeyScript      Key = "scriptResult"
	KeyVoice       Key = "voiceResult"
	KeyImage       Key = "imageResult"
	KeyAvatarVideo Key = "avatarVideoResult"
)

// AllKeys lists every recognized key; start over deletes exactly these.
var AllKeys = []Key{
	KeySessionID,
	KeyProduct,
	KeyScript,
	KeyVoice,
	KeyImage,
	KeyAvatarVideo,
}

// ErrLockTimeout is returned when the store lock cannot be acquired in time.
var ErrLockTimeout = errors.New("session: timed out waiting for store lock")

// Store is a persisted key/value area. Values are JSON text.
// There are no transactions: the last write wins.
type Store interface {
	// Get returns the raw value for key and whether it was present.
	Get(ctx context.Context, key Key) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...Key) error

	// Keys returns the keys currently present.
	Keys(ctx context.Context) ([]Key, error)
}
