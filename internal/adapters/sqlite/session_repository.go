// Package sqlite implements the ports repositories over database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, cli_type, custom_cli_id, project, status, task_description,
	start_time, task_start_time, is_sub_agent, is_closed, term_session_id, last_event_time`

func (r *SessionRepository) Upsert(ctx context.Context, s *domain.Session) error {
	var taskStart sql.NullInt64
	if s.TaskStartTime != nil {
		taskStart = sql.NullInt64{Int64: *s.TaskStartTime, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, cli_type, custom_cli_id, project, status, task_description,
			start_time, task_start_time, is_sub_agent, is_closed, term_session_id, last_event_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cli_type = excluded.cli_type,
			custom_cli_id = excluded.custom_cli_id,
			project = excluded.project,
			status = excluded.status,
			task_description = CASE WHEN excluded.task_description != '' THEN excluded.task_description ELSE task_description END,
			task_start_time = excluded.task_start_time,
			is_sub_agent = excluded.is_sub_agent,
			is_closed = excluded.is_closed,
			term_session_id = excluded.term_session_id,
			last_event_time = excluded.last_event_time`,
		s.ID, string(s.CLIType), s.CustomCLIID, s.Project, string(s.Status), s.TaskDescription,
		s.StartTime, taskStart, boolToInt(s.IsSubAgent), boolToInt(s.IsClosed), s.TermSessionID, s.LastEventTime)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) GetAll(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY last_event_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *SessionRepository) ListActiveByProject(ctx context.Context, project string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE project = ? AND is_closed = 0 AND status IN ('working', 'needs_approval')
		 ORDER BY last_event_time DESC`, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions by project: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *SessionRepository) ListActiveByTerm(ctx context.Context, termSessionID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE term_session_id = ? AND is_closed = 0 AND status IN ('working', 'needs_approval')
		 ORDER BY last_event_time DESC`, termSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions by terminal: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *SessionRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE is_closed = 0 AND status IN ('working', 'needs_approval')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, lastEventTime int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, last_event_time = ? WHERE id = ?`,
		string(status), lastEventTime, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

func (r *SessionRepository) UpdateTask(ctx context.Context, id, taskDescription string, taskStartTime *int64, status domain.Status, lastEventTime int64) error {
	var taskStart sql.NullInt64
	if taskStartTime != nil {
		taskStart = sql.NullInt64{Int64: *taskStartTime, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			task_description = CASE WHEN ? != '' THEN ? ELSE task_description END,
			task_start_time = ?,
			status = ?,
			last_event_time = ?
		WHERE id = ?`,
		taskDescription, taskDescription, taskStart, string(status), lastEventTime, id)
	if err != nil {
		return fmt.Errorf("failed to update session task: %w", err)
	}
	return nil
}

func (r *SessionRepository) UpdateClosed(ctx context.Context, id string, closed bool, lastEventTime int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET is_closed = ?, last_event_time = ? WHERE id = ?`,
		boolToInt(closed), lastEventTime, id)
	if err != nil {
		return fmt.Errorf("failed to update session closed flag: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteClosedBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE is_closed = 1 AND last_event_time < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var cliType, status string
	var taskStart sql.NullInt64
	var isSubAgent, isClosed int

	err := row.Scan(&s.ID, &cliType, &s.CustomCLIID, &s.Project, &status, &s.TaskDescription,
		&s.StartTime, &taskStart, &isSubAgent, &isClosed, &s.TermSessionID, &s.LastEventTime)
	if err != nil {
		return nil, err
	}

	s.CLIType = domain.CLIType(cliType)
	s.Status = domain.Status(status)
	if taskStart.Valid {
		s.TaskStartTime = &taskStart.Int64
	}
	s.IsSubAgent = isSubAgent != 0
	s.IsClosed = isClosed != 0
	s.DeriveProjectName()
	return &s, nil
}

func collectSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
