// Package enrich recovers session context from Claude Code's on-disk
// logs. Everything here is best effort: any miss, parse failure or
// missing file yields zero values, never an error.
package enrich

import (
	"os"
	"path/filepath"
	"strings"
)

// Markers are the side-channel facts recoverable from a session
// transcript.
type Markers struct {
	IsSubAgent       bool
	FirstUserMessage string
}

// Reader scans the shared history log and per-session transcripts under
// a Claude Code home directory (normally ~/.claude).
type Reader struct {
	historyPath string
	projectsDir string
}

// NewReader builds a Reader rooted at the user's home directory.
func NewReader() *Reader {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return NewReaderAt(filepath.Join(home, ".claude"))
}

// NewReaderAt builds a Reader rooted at an explicit Claude home
// directory.
func NewReaderAt(claudeDir string) *Reader {
	return &Reader{
		historyPath: filepath.Join(claudeDir, "history.jsonl"),
		projectsDir: filepath.Join(claudeDir, "projects"),
	}
}

// transcriptPath maps (sessionId, projectPath) to the transcript file.
// The project path is encoded the way Claude Code encodes it: slashes
// become dashes, with no leading dash.
func (r *Reader) transcriptPath(sessionID, projectPath string) string {
	encoded := strings.TrimPrefix(strings.ReplaceAll(projectPath, "/", "-"), "-")
	return filepath.Join(r.projectsDir, encoded, sessionID+".jsonl")
}
