package enrich

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

type transcriptEntry struct {
	Type        string         `json:"type"`
	IsSidechain bool           `json:"isSidechain"`
	AgentID     string         `json:"agentId"`
	Message     *transcriptMsg `json:"message"`
}

type transcriptMsg struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Content json.RawMessage `json:"content"`
}

// RecoverSessionMarkers scans a session transcript for the sub-agent
// marker and the first user message. Defaults on any miss.
func (r *Reader) RecoverSessionMarkers(sessionID, projectPath string) Markers {
	var m Markers

	file, err := os.Open(r.transcriptPath(sessionID, projectPath))
	if err != nil {
		return m
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry transcriptEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		// A sidechain line with an agent id marks a delegated sub-task.
		if entry.IsSidechain && entry.AgentID != "" {
			m.IsSubAgent = true
		}

		if m.FirstUserMessage == "" && entry.Type == "user" && entry.Message != nil {
			if text := extractContentText(entry.Message.Content); text != "" {
				m.FirstUserMessage = meaningfulPrompt(text)
			}
		}

		if m.IsSubAgent && m.FirstUserMessage != "" {
			break
		}
	}

	return m
}

// ReadSessionMessages parses a transcript into chat turns for display.
// Returns nil on any failure.
func (r *Reader) ReadSessionMessages(sessionID, projectPath string) []*domain.Message {
	file, err := os.Open(r.transcriptPath(sessionID, projectPath))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var messages []*domain.Message
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry transcriptEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}
		if entry.Message == nil {
			continue
		}

		role := entry.Message.Role
		if role == "" {
			role = entry.Type
		}

		text := extractContentText(entry.Message.Content)
		if text == "" {
			continue
		}

		messages = append(messages, &domain.Message{
			SessionID: sessionID,
			Role:      role,
			Content:   text,
		})
	}

	return messages
}

// extractContentText flattens transcript message content, which is
// either a plain string or an array of typed blocks.
func extractContentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	var texts []string
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if b.Text != "" {
				texts = append(texts, b.Text)
			}
		case "tool_result":
			if len(b.Content) == 0 {
				continue
			}
			var inner string
			if err := json.Unmarshal(b.Content, &inner); err != nil {
				inner = string(b.Content)
			}
			texts = append(texts, fmt.Sprintf("```\n%s\n```", inner))
		}
	}

	result := ""
	for i, t := range texts {
		if i > 0 {
			result += "\n\n"
		}
		result += t
	}
	return result
}
