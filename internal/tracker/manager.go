// Package tracker is the session state machine. It turns the at-least-once,
// possibly out-of-order lifecycle events posted by CLI hooks into a
// consistent persisted view of every session.
package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/emiliopalmerini/agentboard/internal/domain"
	"github.com/emiliopalmerini/agentboard/internal/enrich"
	"github.com/emiliopalmerini/agentboard/internal/ports"
)

const defaultEnrichDelay = 500 * time.Millisecond

// Enricher recovers session context from the CLI's own on-disk logs.
// Both methods are best effort and return zero values on any miss.
type Enricher interface {
	RecoverTaskDescription(sessionID string) string
	RecoverSessionMarkers(sessionID, projectPath string) enrich.Markers
}

// Manager serializes every session mutation behind a single mutex.
// Events for the expected single-machine deployment arrive one at a
// time, so one lock is enough and keeps each transition atomic with
// respect to the sweeps.
type Manager struct {
	mu sync.Mutex

	sessions ports.SessionRepository
	events   ports.EventRepository
	enricher Enricher
	notifier ports.Notifier
	metrics  ports.MetricsRecorder

	onChange    func([]*domain.Session)
	enrichDelay time.Duration
}

func NewManager(sessions ports.SessionRepository, events ports.EventRepository, enricher Enricher, notifier ports.Notifier, metrics ports.MetricsRecorder) *Manager {
	return &Manager{
		sessions:    sessions,
		events:      events,
		enricher:    enricher,
		notifier:    notifier,
		metrics:     metrics,
		enrichDelay: defaultEnrichDelay,
	}
}

// SetOnChange registers the broadcast callback. It is invoked with the
// full session list after every committed mutation.
func (m *Manager) SetOnChange(fn func([]*domain.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// HandleEvent applies one lifecycle event. Events that assume a session
// which does not exist are silent no-ops.
func (m *Manager) HandleEvent(ctx context.Context, p *domain.HookPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.EventIngested(p.HookEventName)

	now := time.Now().UnixMilli()
	sess, err := m.sessions.GetByID(ctx, p.SessionID)
	if err != nil {
		return err
	}

	// Reopen rule: any event other than before_exit unmarks a closed
	// session before its own transition runs. UserPromptSubmit still
	// needs to know the session was closed, so capture that first.
	wasClosed := sess != nil && sess.IsClosed
	if wasClosed && p.HookEventName != domain.EventBeforeExit {
		sess.IsClosed = false
	}

	var mutated bool
	switch p.HookEventName {
	case domain.EventSessionStart:
		mutated, err = m.handleSessionStart(ctx, sess, p, now)
	case domain.EventUserPromptSubmit:
		mutated, err = m.handleUserPromptSubmit(ctx, sess, wasClosed, p, now)
	case domain.EventStop:
		mutated, err = m.handleStop(ctx, sess, p, now)
	case domain.EventBeforeExit:
		mutated, err = m.handleBeforeExit(ctx, sess, p, now)
	case domain.EventNotification:
		mutated, err = m.handleNotification(ctx, sess, p, now)
	case domain.EventPermissionRequest:
		mutated, err = m.handlePermissionRequest(ctx, sess, p, now)
	default:
		mutated, err = m.handleUnknown(ctx, sess, p, now)
	}
	if err != nil {
		return err
	}

	if mutated {
		m.broadcast(ctx)
	}
	return nil
}

func (m *Manager) handleSessionStart(ctx context.Context, sess *domain.Session, p *domain.HookPayload, now int64) (bool, error) {
	if sess == nil {
		markers := m.enricher.RecoverSessionMarkers(p.SessionID, p.Cwd)

		sess = &domain.Session{
			ID:            p.SessionID,
			CLIType:       p.CLIType,
			CustomCLIID:   p.CustomCLIID,
			Project:       p.Cwd,
			Status:        domain.StatusIdle,
			StartTime:     now,
			TermSessionID: p.TermSessionID,
		}
		sess.DeriveProjectName()

		if markers.IsSubAgent {
			sess.IsSubAgent = true
			sess.Status = domain.StatusWorking
			sess.TaskStartTime = &now
		}
		if p.TaskDescription != "" {
			sess.TaskDescription = p.TaskDescription
		} else {
			sess.TaskDescription = markers.FirstUserMessage
		}
	} else {
		// Idempotent re-announcement: refresh identity fields, leave
		// the status wherever prior events put it.
		if p.Cwd != "" {
			sess.Project = p.Cwd
			sess.DeriveProjectName()
		}
		if p.TermSessionID != "" {
			sess.TermSessionID = p.TermSessionID
		}
		if p.TaskDescription != "" {
			sess.TaskDescription = p.TaskDescription
		}
	}

	if p.TermSessionID != "" {
		if err := m.supersedeTerminalGroup(ctx, p.SessionID, p.TermSessionID, now); err != nil {
			return false, err
		}
	}

	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) handleUserPromptSubmit(ctx context.Context, sess *domain.Session, wasClosed bool, p *domain.HookPayload, now int64) (bool, error) {
	fresh := sess == nil || wasClosed
	if fresh {
		// At most one active session per project: a new prompt in a
		// project supersedes whatever was running there.
		if p.Cwd != "" {
			if err := m.supersedeProject(ctx, p.SessionID, p.Cwd, now); err != nil {
				return false, err
			}
		}
	}

	if sess == nil {
		sess = &domain.Session{
			ID:            p.SessionID,
			CLIType:       p.CLIType,
			CustomCLIID:   p.CustomCLIID,
			Project:       p.Cwd,
			StartTime:     now,
			TermSessionID: p.TermSessionID,
		}
		sess.DeriveProjectName()
	}

	sess.Status = domain.StatusWorking
	sess.TaskStartTime = &now
	sess.LastEventTime = now
	if p.Prompt != "" {
		sess.TaskDescription = p.Prompt
	}

	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	m.metrics.StatusTransition(domain.StatusWorking)

	if fresh && sess.TaskDescription == "" {
		m.scheduleEnrichment(sess.ID)
	}
	return true, nil
}

func (m *Manager) handleStop(ctx context.Context, sess *domain.Session, p *domain.HookPayload, now int64) (bool, error) {
	if sess == nil {
		return false, nil
	}
	sess.Status = domain.StatusDone
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	m.metrics.StatusTransition(domain.StatusDone)
	m.notifier.TaskComplete(sess)
	return true, nil
}

func (m *Manager) handleBeforeExit(ctx context.Context, sess *domain.Session, p *domain.HookPayload, now int64) (bool, error) {
	if sess == nil {
		return false, nil
	}
	sess.IsClosed = true
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) handleNotification(ctx context.Context, sess *domain.Session, p *domain.HookPayload, now int64) (bool, error) {
	if sess == nil {
		return false, nil
	}
	if p.NotificationType == domain.NotificationPermissionPrompt {
		sess.Status = domain.StatusNeedsApproval
		m.notifier.ApprovalNeeded(sess)
	} else {
		// Any other notification means the process is alive and not
		// blocked on the user.
		sess.Status = domain.StatusWorking
	}
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	m.metrics.StatusTransition(sess.Status)
	return true, nil
}

func (m *Manager) handlePermissionRequest(ctx context.Context, sess *domain.Session, p *domain.HookPayload, now int64) (bool, error) {
	if sess == nil {
		return false, nil
	}
	sess.Status = domain.StatusNeedsApproval
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	m.metrics.StatusTransition(domain.StatusNeedsApproval)
	m.notifier.ApprovalNeeded(sess)
	return true, nil
}

func (m *Manager) handleUnknown(ctx context.Context, sess *domain.Session, p *domain.HookPayload, now int64) (bool, error) {
	if sess == nil {
		return false, nil
	}
	// An unrecognized event while waiting on approval is treated as
	// the approval having been granted.
	if sess.Status == domain.StatusNeedsApproval {
		sess.Status = domain.StatusWorking
		m.metrics.StatusTransition(domain.StatusWorking)
	}
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return false, err
	}
	if err := m.events.Insert(ctx, sess.ID, p.HookEventName, p.Content(), now); err != nil {
		return false, err
	}
	return true, nil
}

// supersedeProject closes every other active session in the project.
func (m *Manager) supersedeProject(ctx context.Context, keepID, project string, now int64) error {
	others, err := m.sessions.ListActiveByProject(ctx, project)
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.ID == keepID {
			continue
		}
		if err := m.autoClose(ctx, other, now); err != nil {
			return err
		}
	}
	return nil
}

// supersedeTerminalGroup closes every other active session launched
// from the same terminal.
func (m *Manager) supersedeTerminalGroup(ctx context.Context, keepID, termSessionID string, now int64) error {
	others, err := m.sessions.ListActiveByTerm(ctx, termSessionID)
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.ID == keepID {
			continue
		}
		if err := m.autoClose(ctx, other, now); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) autoClose(ctx context.Context, sess *domain.Session, now int64) error {
	sess.Status = domain.StatusDone
	sess.IsClosed = true
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return err
	}
	return m.events.Insert(ctx, sess.ID, domain.EventSessionAutoClosed, "superseded by a newer session", now)
}

// scheduleEnrichment backfills a missing task description after a short
// delay, giving the CLI time to flush its history log. The result is
// applied only if the field is still empty by then.
func (m *Manager) scheduleEnrichment(sessionID string) {
	go func() {
		time.Sleep(m.enrichDelay)

		m.mu.Lock()
		defer m.mu.Unlock()

		ctx := context.Background()
		sess, err := m.sessions.GetByID(ctx, sessionID)
		if err != nil || sess == nil || sess.TaskDescription != "" {
			return
		}

		desc := m.enricher.RecoverTaskDescription(sessionID)
		if desc == "" {
			desc = m.enricher.RecoverSessionMarkers(sessionID, sess.Project).FirstUserMessage
		}
		if desc == "" {
			return
		}

		if err := m.sessions.UpdateTask(ctx, sessionID, desc, sess.TaskStartTime, sess.Status, sess.LastEventTime); err != nil {
			log.Printf("enrichment backfill for %s: %v", sessionID, err)
			return
		}
		if err := m.events.Insert(ctx, sessionID, domain.EventTaskDescriptionUpdate, desc, time.Now().UnixMilli()); err != nil {
			log.Printf("enrichment audit for %s: %v", sessionID, err)
			return
		}
		m.broadcast(ctx)
	}()
}

// CloseSession marks a session done and closed on the user's behalf.
func (m *Manager) CloseSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session %s not found", id)
	}

	now := time.Now().UnixMilli()
	sess.Status = domain.StatusDone
	sess.IsClosed = true
	sess.LastEventTime = now
	if err := m.sessions.Upsert(ctx, sess); err != nil {
		return err
	}
	if err := m.events.Insert(ctx, id, domain.EventSessionClosedManually, "", now); err != nil {
		return err
	}
	m.broadcast(ctx)
	return nil
}

// DeleteSession removes a session and its events permanently.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sessions.Delete(ctx, id); err != nil {
		return err
	}
	m.broadcast(ctx)
	return nil
}

// GetAllSessions returns every session, closed included.
func (m *Manager) GetAllSessions(ctx context.Context) ([]*domain.Session, error) {
	return m.sessions.GetAll(ctx)
}

// GetSession returns (nil, nil) when the id is unknown.
func (m *Manager) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return m.sessions.GetByID(ctx, id)
}

// GetSessionEvents returns the audit trail in append order.
func (m *Manager) GetSessionEvents(ctx context.Context, id string) ([]*domain.Event, error) {
	return m.events.ListBySession(ctx, id)
}

// broadcast pushes the full current list to the registered listener.
// Must be called with the lock held, after the store write committed.
func (m *Manager) broadcast(ctx context.Context) {
	if m.onChange == nil {
		return
	}
	list, err := m.sessions.GetAll(ctx)
	if err != nil {
		log.Printf("change broadcast: %v", err)
		return
	}
	m.onChange(list)
}
