package domain

import "path/filepath"

// Status is the derived lifecycle state of a session.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusWorking       Status = "working"
	StatusNeedsApproval Status = "needs_approval"
	StatusDone          Status = "done"
)

// Active reports whether a session in this status counts as active for
// heartbeat and auto-close purposes.
func (s Status) Active() bool {
	return s == StatusWorking || s == StatusNeedsApproval
}

// CLIType identifies which coding-assistant CLI a session belongs to.
type CLIType string

const (
	CLIClaudeCode CLIType = "claude-code"
	CLIAider      CLIType = "aider"
	CLIGemini     CLIType = "gemini"
	CLICursor     CLIType = "cursor"
	CLIOther      CLIType = "other"
)

// Session is one tracked invocation of an external CLI coding assistant.
// Timestamps are epoch milliseconds.
type Session struct {
	ID              string  `json:"id"`
	CLIType         CLIType `json:"cliType"`
	CustomCLIID     string  `json:"customCliId,omitempty"`
	Project         string  `json:"project"`
	ProjectName     string  `json:"projectName"`
	Status          Status  `json:"status"`
	TaskDescription string  `json:"taskDescription"`
	StartTime       int64   `json:"startTime"`
	TaskStartTime   *int64  `json:"taskStartTime"`
	IsSubAgent      bool    `json:"isSubAgent"`
	IsClosed        bool    `json:"isClosed"`
	TermSessionID   string  `json:"termSessionId,omitempty"`
	LastEventTime   int64   `json:"lastEventTime"`
}

// DeriveProjectName fills ProjectName from the project path. It is called
// at read time; the basename is never stored.
func (s *Session) DeriveProjectName() {
	if s.Project == "" {
		s.ProjectName = ""
		return
	}
	s.ProjectName = filepath.Base(s.Project)
}
