// Package ports defines the interfaces between the tracker core and its
// adapters.
package ports

import (
	"context"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

// SessionRepository is the persistence boundary for sessions.
type SessionRepository interface {
	// Upsert creates the session or updates it in place. A non-empty
	// TaskDescription always wins; an empty one never clobbers an
	// existing value.
	Upsert(ctx context.Context, s *domain.Session) error
	// GetByID returns (nil, nil) when the session does not exist.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// GetAll returns every session, closed included, most recent first.
	GetAll(ctx context.Context) ([]*domain.Session, error)
	// ListActiveByProject returns non-closed sessions in the project
	// whose status is working or needs_approval.
	ListActiveByProject(ctx context.Context, project string) ([]*domain.Session, error)
	// ListActiveByTerm returns non-closed active sessions sharing a
	// terminal correlation key.
	ListActiveByTerm(ctx context.Context, termSessionID string) ([]*domain.Session, error)
	CountActive(ctx context.Context) (int64, error)

	UpdateStatus(ctx context.Context, id string, status domain.Status, lastEventTime int64) error
	UpdateTask(ctx context.Context, id, taskDescription string, taskStartTime *int64, status domain.Status, lastEventTime int64) error
	UpdateClosed(ctx context.Context, id string, closed bool, lastEventTime int64) error

	// DeleteClosedBefore removes closed sessions whose last event is
	// older than the cutoff, cascading their events. Returns the number
	// of sessions removed.
	DeleteClosedBefore(ctx context.Context, cutoff int64) (int64, error)
	Delete(ctx context.Context, id string) error
}

// EventRepository is the append-only audit log.
type EventRepository interface {
	Insert(ctx context.Context, sessionID, eventType, content string, timestamp int64) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Event, error)
}

// MessageRepository stores chat turns for transcript display.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error)
}

// CustomCLIRepository stores user-defined CLI profiles.
type CustomCLIRepository interface {
	Save(ctx context.Context, c *domain.CustomCLI) error
	GetByID(ctx context.Context, id string) (*domain.CustomCLI, error)
	GetAll(ctx context.Context) ([]*domain.CustomCLI, error)
	Delete(ctx context.Context, id string) error
}
