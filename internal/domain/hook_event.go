package domain

import (
	"encoding/json"
	"fmt"
)

// HookPayload is one lifecycle event posted by a CLI hook. Only
// HookEventName and SessionID are required; everything else is optional
// and event-dependent.
type HookPayload struct {
	HookEventName    string  `json:"hook_event_name"`
	SessionID        string  `json:"session_id"`
	Cwd              string  `json:"cwd"`
	CLIType          CLIType `json:"cli_type"`
	CustomCLIID      string  `json:"custom_cli_id"`
	Prompt           string  `json:"prompt"`
	Message          string  `json:"message"`
	ToolName         string  `json:"tool_name"`
	PermissionMode   string  `json:"permission_mode"`
	NotificationType string  `json:"notification_type"`
	TaskDescription  string  `json:"task_description"`
	TermSessionID    string  `json:"term_session_id"`
	TranscriptPath   string  `json:"transcript_path"`
}

// ParseHookPayload parses raw JSON into a HookPayload, rejecting bodies
// missing the required fields and applying the documented defaults for
// cwd and cli_type.
func ParseHookPayload(data []byte) (*HookPayload, error) {
	var p HookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse hook payload: %w", err)
	}

	if p.HookEventName == "" || p.SessionID == "" {
		return nil, fmt.Errorf("missing hook_event_name or session_id")
	}

	if p.CLIType == "" {
		p.CLIType = CLIClaudeCode
	}

	return &p, nil
}

// Content derives the event-log content for this payload. First
// non-empty source wins: prompt, message, "mode: tool" (bare tool name
// when the mode is absent), bare mode, legacy task_description,
// notification_type.
func (p *HookPayload) Content() string {
	switch {
	case p.Prompt != "":
		return p.Prompt
	case p.Message != "":
		return p.Message
	case p.ToolName != "":
		if p.PermissionMode != "" {
			return fmt.Sprintf("%s: %s", p.PermissionMode, p.ToolName)
		}
		return p.ToolName
	case p.PermissionMode != "":
		return p.PermissionMode
	case p.TaskDescription != "":
		return p.TaskDescription
	case p.NotificationType != "":
		return p.NotificationType
	}
	return ""
}
