package enrich

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testReader(t *testing.T) (*Reader, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "projects"), 0o755); err != nil {
		t.Fatalf("mkdir projects: %v", err)
	}
	return NewReaderAt(dir), dir
}

func writeTranscript(t *testing.T, dir, sessionID, projectPath string, lines []string) {
	t.Helper()
	encoded := strings.TrimPrefix(strings.ReplaceAll(projectPath, "/", "-"), "-")
	projDir := filepath.Join(dir, "projects", encoded)
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatalf("mkdir transcript dir: %v", err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(projDir, sessionID+".jsonl"), []byte(content), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
}

func TestRecoverTaskDescriptionLastMatchWins(t *testing.T) {
	r, dir := testReader(t)

	lines := []string{
		`{"display":"refactor the billing module for clarity","sessionId":"s1"}`,
		`{"display":"/compact","sessionId":"s1"}`,
		`{"display":"unrelated prompt for another session","sessionId":"s2"}`,
		`{"display":"add retry logic to the webhook sender","sessionId":"s1"}`,
	}
	if err := os.WriteFile(filepath.Join(dir, "history.jsonl"), []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write history: %v", err)
	}

	got := r.RecoverTaskDescription("s1")
	want := "add retry logic to the webhook sender"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRecoverTaskDescriptionMissingFile(t *testing.T) {
	r, _ := testReader(t)
	if got := r.RecoverTaskDescription("s1"); got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
}

func TestMeaningfulPrompt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"slash command", "/compact the conversation now", ""},
		{"flag", "--dangerously-skip-permissions please", ""},
		{"too short", "fix the bug", ""},
		{"kept", "please fix the login page layout", "please fix the login page layout"},
		{"trimmed", "  please fix the login page layout  ", "please fix the login page layout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meaningfulPrompt(tt.in); got != tt.want {
				t.Errorf("meaningfulPrompt(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMeaningfulPromptTruncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := meaningfulPrompt(long)
	if len([]rune(got)) != maxPromptRunes+1 {
		t.Errorf("truncated length = %d runes, want %d", len([]rune(got)), maxPromptRunes+1)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
}

func TestRecoverSessionMarkers(t *testing.T) {
	r, dir := testReader(t)

	writeTranscript(t, dir, "s1", "/home/dev/proj", []string{
		`{"type":"summary","summary":"something"}`,
		`{"type":"user","message":{"role":"user","content":"please investigate the flaky integration test"}}`,
		`{"type":"assistant","isSidechain":true,"agentId":"agent-1","message":{"role":"assistant","content":[{"type":"text","text":"done"}]}}`,
	})

	m := r.RecoverSessionMarkers("s1", "/home/dev/proj")
	if !m.IsSubAgent {
		t.Error("expected sub-agent marker")
	}
	if m.FirstUserMessage != "please investigate the flaky integration test" {
		t.Errorf("first user message = %q", m.FirstUserMessage)
	}
}

func TestRecoverSessionMarkersMissingTranscript(t *testing.T) {
	r, _ := testReader(t)
	m := r.RecoverSessionMarkers("s1", "/home/dev/proj")
	if m.IsSubAgent || m.FirstUserMessage != "" {
		t.Errorf("expected zero markers, got %+v", m)
	}
}

func TestRecoverSessionMarkersSidechainNeedsAgentID(t *testing.T) {
	r, dir := testReader(t)

	writeTranscript(t, dir, "s1", "/home/dev/proj", []string{
		`{"type":"assistant","isSidechain":true,"message":{"role":"assistant","content":"ok"}}`,
	})

	if m := r.RecoverSessionMarkers("s1", "/home/dev/proj"); m.IsSubAgent {
		t.Error("sidechain without agent id must not mark a sub-agent")
	}
}

func TestReadSessionMessages(t *testing.T) {
	r, dir := testReader(t)

	writeTranscript(t, dir, "s1", "/home/dev/proj", []string{
		`{"type":"user","message":{"role":"user","content":"run the tests"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Running."},{"type":"text","text":"All green."}]}}`,
		`{"type":"user","message":{"role":"user","content":[{"type":"tool_result","content":"ok 12 tests"}]}}`,
		`{"type":"summary","summary":"ignored"}`,
		`not json`,
	})

	msgs := r.ReadSessionMessages("s1", "/home/dev/proj")
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "run the tests" {
		t.Errorf("unexpected first message %+v", msgs[0])
	}
	if msgs[1].Content != "Running.\n\nAll green." {
		t.Errorf("text blocks not joined: %q", msgs[1].Content)
	}
	if msgs[2].Content != "```\nok 12 tests\n```" {
		t.Errorf("tool result not fenced: %q", msgs[2].Content)
	}
}
