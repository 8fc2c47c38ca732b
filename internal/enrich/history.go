package enrich

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	minPromptRunes = 15
	maxPromptRunes = 200
)

type historyEntry struct {
	Display   string `json:"display"`
	SessionID string `json:"sessionId"`
}

// RecoverTaskDescription scans the shared history log for the most
// recent meaningful prompt tied to a session. Returns "" on any miss.
func (r *Reader) RecoverTaskDescription(sessionID string) string {
	file, err := os.Open(r.historyPath)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	// Later lines are newer; the last match wins.
	var desc string
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry historyEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.SessionID != sessionID {
			continue
		}
		if d := meaningfulPrompt(entry.Display); d != "" {
			desc = d
		}
	}

	return desc
}

// meaningfulPrompt filters out slash-commands, flags and short noise,
// and truncates long prompts.
func meaningfulPrompt(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "--") {
		return ""
	}
	if utf8.RuneCountInString(trimmed) < minPromptRunes {
		return ""
	}

	if utf8.RuneCountInString(trimmed) > maxPromptRunes {
		runes := []rune(trimmed)
		return string(runes[:maxPromptRunes]) + "…"
	}
	return trimmed
}
