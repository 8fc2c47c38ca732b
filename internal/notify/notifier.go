// Package notify delivers desktop notifications for session state
// changes. Delivery is best effort; failures are logged and dropped.
package notify

import (
	"fmt"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/gen2brain/beeep"

	"github.com/emiliopalmerini/agentboard/internal/domain"
	"github.com/emiliopalmerini/agentboard/internal/ports"
)

const maxBodyRunes = 50

// Notifier sends desktop notifications through the platform's native
// mechanism, honoring the persisted user settings.
type Notifier struct {
	mu       sync.Mutex
	settings Settings
	store    *SettingsStore
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier loads settings from the store and keeps them cached in
// memory.
func NewNotifier(store *SettingsStore) *Notifier {
	return &Notifier{
		settings: store.Load(),
		store:    store,
	}
}

// Settings returns the current settings.
func (n *Notifier) Settings() Settings {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.settings
}

// UpdateSettings persists and applies new settings.
func (n *Notifier) UpdateSettings(s Settings) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.store.Save(s); err != nil {
		return err
	}
	n.settings = s
	return nil
}

// ApprovalNeeded notifies that a session is waiting on the user.
func (n *Notifier) ApprovalNeeded(s *domain.Session) {
	n.mu.Lock()
	enabled := n.settings.Enabled && n.settings.NotifyOnApproval
	n.mu.Unlock()
	if !enabled {
		return
	}
	n.send("AgentBoard - Approval needed", approvalBody(s))
}

// TaskComplete notifies that a session finished its task.
func (n *Notifier) TaskComplete(s *domain.Session) {
	n.mu.Lock()
	enabled := n.settings.Enabled && n.settings.NotifyOnComplete
	n.mu.Unlock()
	if !enabled {
		return
	}
	n.send("AgentBoard - Task complete", completeBody(s))
}

func (n *Notifier) send(title, body string) {
	if err := beeep.Notify(title, body, ""); err != nil {
		log.Printf("notification %q: %v", title, err)
	}
}

func approvalBody(s *domain.Session) string {
	if desc := truncate(s.TaskDescription); desc != "" {
		return fmt.Sprintf("Task %q needs your approval", desc)
	}
	return "A session needs your approval"
}

func completeBody(s *domain.Session) string {
	if desc := truncate(s.TaskDescription); desc != "" {
		return fmt.Sprintf("Task %q is complete", desc)
	}
	return "Task complete"
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxBodyRunes {
		return s
	}
	return string([]rune(s)[:maxBodyRunes]) + "..."
}
