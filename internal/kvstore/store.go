// Package kvstore provides a small scoped key-value store used for
// operator preferences and the fleet waiting queue. Session-scoped
// entries expire with the working shift; durable entries persist until
// overwritten or deleted.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// Scope selects the lifetime of an entry.
type Scope int

const (
	// ScopeSession entries expire automatically after SessionTTL.
	ScopeSession Scope = iota
	// ScopeDurable entries never expire on their own.
	ScopeDurable
)

// SessionTTL bounds session-scoped entries to a working shift.
const SessionTTL = 12 * time.Hour

// ErrNotFound is returned when a key has no value in the given scope.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a scoped string key-value store.
type Store interface {
	Get(ctx context.Context, scope Scope, key string) (string, error)
	Set(ctx context.Context, scope Scope, key, value string) error
	Delete(ctx context.Context, scope Scope, key string) error
}
