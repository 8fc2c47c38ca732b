package ports

import "github.com/emiliopalmerini/agentboard/internal/domain"

// Notifier delivers user-facing notifications. Implementations must
// never block the event path; failures are swallowed at the adapter.
type Notifier interface {
	ApprovalNeeded(s *domain.Session)
	TaskComplete(s *domain.Session)
}

// MetricsRecorder receives counters from the tracker. Implementations
// must be cheap and non-blocking.
type MetricsRecorder interface {
	EventIngested(eventName string)
	StatusTransition(status domain.Status)
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

func (NoopNotifier) ApprovalNeeded(*domain.Session) {}
func (NoopNotifier) TaskComplete(*domain.Session)   {}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) EventIngested(string)           {}
func (NoopMetrics) StatusTransition(domain.Status) {}
