package domain

// Lifecycle event names emitted by the CLI hooks.
const (
	EventSessionStart      = "SessionStart"
	EventUserPromptSubmit  = "UserPromptSubmit"
	EventStop              = "Stop"
	EventBeforeExit        = "before_exit"
	EventNotification      = "Notification"
	EventPermissionRequest = "PermissionRequest"
)

// Audit event types appended by the tracker itself.
const (
	EventSessionAutoClosed     = "SessionAutoClosed"
	EventSessionClosedManually = "SessionClosedManually"
	EventHeartbeatTimeout      = "HeartbeatTimeout"
	EventTaskDescriptionUpdate = "TaskDescriptionUpdate"
)

// NotificationPermissionPrompt is the notification_type that signals a
// pending permission prompt.
const NotificationPermissionPrompt = "permission_prompt"

// Event is an immutable log entry in a session's audit trail.
type Event struct {
	ID        int64  `json:"id"`
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Message is a persisted chat turn, used for transcript display only.
type Message struct {
	ID        int64  `json:"id"`
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}
