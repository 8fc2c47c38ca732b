package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Insert(ctx context.Context, sessionID, eventType, content string, timestamp int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (session_id, type, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, eventType, content, timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, type, content, timestamp FROM events
		 WHERE session_id = ? ORDER BY timestamp ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &e.Content, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
