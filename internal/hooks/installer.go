// Package hooks installs the lifecycle hooks into Claude Code's
// settings.json so that every session reports to the local server.
package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	scriptName = "agent-board-hook.sh"
	hookDirRel = "hooks/agent-board"
	// Seconds the CLI waits for the hook before moving on.
	hookTimeout = 5
)

// hookEvents are the Claude Code lifecycle events the tracker needs.
var hookEvents = []string{
	"SessionStart",
	"UserPromptSubmit",
	"Stop",
	"Notification",
	"PermissionRequest",
	"before_exit",
}

type hookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

type hookMatcher struct {
	Matcher string      `json:"matcher"`
	Hooks   []hookEntry `json:"hooks"`
}

// Installer wires and unwires the hook script. Foreign hook entries in
// settings.json are never touched; they round-trip byte for byte.
type Installer struct {
	claudeDir string
	endpoint  string
}

// NewInstaller targets ~/.claude and the given ingestion endpoint,
// e.g. "http://127.0.0.1:27420/api/event".
func NewInstaller(endpoint string) (*Installer, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewInstallerAt(filepath.Join(home, ".claude"), endpoint), nil
}

func NewInstallerAt(claudeDir, endpoint string) *Installer {
	return &Installer{claudeDir: claudeDir, endpoint: endpoint}
}

func (i *Installer) settingsPath() string {
	return filepath.Join(i.claudeDir, "settings.json")
}

func (i *Installer) scriptPath() string {
	return filepath.Join(i.claudeDir, hookDirRel, scriptName)
}

// Install writes the hook script and registers it for every lifecycle
// event, skipping events where it is already present.
func (i *Installer) Install() error {
	if err := i.writeScript(); err != nil {
		return err
	}

	settings, hooks, err := i.readSettings()
	if err != nil {
		return err
	}

	modified := false
	for _, event := range hookEvents {
		if containsOurHook(hooks[event]) {
			continue
		}
		matcher, err := json.Marshal(hookMatcher{
			Hooks: []hookEntry{{Type: "command", Command: i.scriptPath(), Timeout: hookTimeout}},
		})
		if err != nil {
			return err
		}
		hooks[event] = append(hooks[event], matcher)
		modified = true
	}

	if !modified {
		return nil
	}
	return i.writeSettings(settings, hooks)
}

// Uninstall removes every matcher that references the hook script,
// leaving everything else in place.
func (i *Installer) Uninstall() error {
	if _, err := os.Stat(i.settingsPath()); os.IsNotExist(err) {
		return nil
	}

	settings, hooks, err := i.readSettings()
	if err != nil {
		return err
	}

	modified := false
	for _, event := range hookEvents {
		matchers, ok := hooks[event]
		if !ok {
			continue
		}
		kept := matchers[:0]
		for _, m := range matchers {
			if matcherIsOurs(m) {
				modified = true
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			delete(hooks, event)
		} else {
			hooks[event] = kept
		}
	}

	if !modified {
		return nil
	}
	return i.writeSettings(settings, hooks)
}

// Installed reports whether the SessionStart hook is registered.
func (i *Installer) Installed() bool {
	_, hooks, err := i.readSettings()
	if err != nil {
		return false
	}
	return containsOurHook(hooks["SessionStart"])
}

// writeScript drops a small shell script that forwards the hook's
// stdin payload to the local server. The script always exits zero so a
// stopped server never blocks the CLI.
func (i *Installer) writeScript() error {
	dir := filepath.Dir(i.scriptPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	script := fmt.Sprintf(`#!/bin/sh
# Installed by AgentBoard. Forwards Claude Code hook events to the
# local session tracker. Safe to delete; reinstall from the app.
payload=$(cat)
curl -s -X POST -H "Content-Type: application/json" \
  --max-time 3 --data "$payload" \
  "%s" >/dev/null 2>&1
exit 0
`, i.endpoint)
	return os.WriteFile(i.scriptPath(), []byte(script), 0o755)
}

// readSettings splits settings.json into the hooks section, kept as
// raw JSON per matcher, and everything else untouched.
func (i *Installer) readSettings() (map[string]json.RawMessage, map[string][]json.RawMessage, error) {
	settings := map[string]json.RawMessage{}

	data, err := os.ReadFile(i.settingsPath())
	if err == nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", i.settingsPath(), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, err
	}

	hooks := map[string][]json.RawMessage{}
	if raw, ok := settings["hooks"]; ok {
		if err := json.Unmarshal(raw, &hooks); err != nil {
			return nil, nil, fmt.Errorf("parsing hooks section: %w", err)
		}
	}
	return settings, hooks, nil
}

// writeSettings writes atomically: temp file in the same directory,
// then rename.
func (i *Installer) writeSettings(settings map[string]json.RawMessage, hooks map[string][]json.RawMessage) error {
	raw, err := json.Marshal(hooks)
	if err != nil {
		return err
	}
	settings["hooks"] = raw

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(i.claudeDir, 0o755); err != nil {
		return err
	}
	tmp := i.settingsPath() + ".agent-board.tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, i.settingsPath())
}

func containsOurHook(matchers []json.RawMessage) bool {
	for _, m := range matchers {
		if matcherIsOurs(m) {
			return true
		}
	}
	return false
}

func matcherIsOurs(raw json.RawMessage) bool {
	var m hookMatcher
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	for _, h := range m.Hooks {
		if strings.Contains(h.Command, scriptName) {
			return true
		}
	}
	return false
}
