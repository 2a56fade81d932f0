package storage

import (
	"context"
	"errors"

	"shopassist/pkg"
)

// ErrSessionNotFound is returned when no persisted context exists for a
// session id, or the stored entry has expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSession is returned when a context without a session id is
// offered for persistence.
var ErrInvalidSession = errors.New("invalid session context")

// Repository persists conversation contexts keyed by session id. Save
// resets the entry's TTL; Load refreshes it, so active sessions stay
// alive as long as traffic keeps arriving.
type Repository interface {
	Save(ctx context.Context, conversation *pkg.ConversationContext) error
	Load(ctx context.Context, sessionID string) (*pkg.ConversationContext, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}
