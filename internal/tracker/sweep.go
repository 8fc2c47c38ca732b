package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

// CheckHeartbeats demotes active sessions that have gone silent for
// longer than timeout. Returns the number of sessions demoted.
func (m *Manager) CheckHeartbeats(ctx context.Context, timeout time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.sessions.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UnixMilli()
	demoted := 0
	for _, sess := range list {
		if !sess.Status.Active() || sess.IsClosed {
			continue
		}
		elapsed := now - sess.LastEventTime
		if elapsed <= timeout.Milliseconds() {
			continue
		}

		// A real event may have landed between the scan and this
		// write; re-read so the event always wins.
		current, err := m.sessions.GetByID(ctx, sess.ID)
		if err != nil {
			return demoted, err
		}
		if current == nil || !current.Status.Active() || current.IsClosed || now-current.LastEventTime <= timeout.Milliseconds() {
			continue
		}

		if err := m.sessions.UpdateStatus(ctx, sess.ID, domain.StatusIdle, current.LastEventTime); err != nil {
			return demoted, err
		}
		content := fmt.Sprintf("no events for %s", (time.Duration(elapsed) * time.Millisecond).Round(time.Second))
		if err := m.events.Insert(ctx, sess.ID, domain.EventHeartbeatTimeout, content, now); err != nil {
			return demoted, err
		}
		m.metrics.StatusTransition(domain.StatusIdle)
		demoted++
	}

	if demoted > 0 {
		m.broadcast(ctx)
	}
	return demoted, nil
}

// CleanOldSessions removes sessions closed for longer than retention,
// cascading their events. Returns the number removed.
func (m *Manager) CleanOldSessions(ctx context.Context, retention time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-retention).UnixMilli()
	removed, err := m.sessions.DeleteClosedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		m.broadcast(ctx)
	}
	return removed, nil
}

// RunHeartbeatLoop runs the staleness sweep on a fixed interval until
// the context is cancelled.
func (m *Manager) RunHeartbeatLoop(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := m.CheckHeartbeats(ctx, timeout); err != nil {
				log.Printf("heartbeat sweep: %v", err)
			} else if n > 0 {
				log.Printf("heartbeat sweep: demoted %d stale sessions", n)
			}
		}
	}
}

// RunRetentionLoop runs the retention sweep on a fixed interval until
// the context is cancelled.
func (m *Manager) RunRetentionLoop(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := m.CleanOldSessions(ctx, retention); err != nil {
				log.Printf("retention sweep: %v", err)
			} else if n > 0 {
				log.Printf("retention sweep: removed %d old sessions", n)
			}
		}
	}
}
