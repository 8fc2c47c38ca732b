package configadapter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

func TestClaudeCodeAdapterLegacyConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".claude.json")
	seed := `{
  "mcpServers": {
    "filesystem": {"command": "npx", "args": ["-y", "@mcp/filesystem"], "env": {"ROOT": "/tmp"}}
  }
}`
	if err := os.WriteFile(configPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a := NewClaudeCodeAdapter(configPath, filepath.Join(dir, "skills"))
	mcps, err := a.ReadMCPs()
	if err != nil {
		t.Fatalf("ReadMCPs: %v", err)
	}
	if len(mcps) != 1 {
		t.Fatalf("got %d servers, want 1", len(mcps))
	}
	if mcps[0].Name != "filesystem" || mcps[0].Command != "npx" {
		t.Errorf("unexpected server %+v", mcps[0])
	}

	if err := a.SaveMCP(MCPServer{Name: "fetch", Command: "uvx", Args: []string{"mcp-fetch"}, Env: map[string]string{}}); err != nil {
		t.Fatalf("SaveMCP: %v", err)
	}
	if err := a.DeleteMCP("filesystem"); err != nil {
		t.Fatalf("DeleteMCP: %v", err)
	}

	mcps, err = a.ReadMCPs()
	if err != nil {
		t.Fatalf("ReadMCPs after edit: %v", err)
	}
	if len(mcps) != 1 || mcps[0].Name != "fetch" {
		t.Errorf("after edit: %+v", mcps)
	}
}

func TestClaudeCodeAdapterProjectConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".claude.json")
	seed := `{
  "projects": {
    "/home/dev/api": {"mcpServers": {"db": {"type": "stdio", "command": "pgmcp", "args": []}}},
    "/home/dev/web": {"mcpServers": {"db": {"type": "http", "url": "http://localhost:9000"}}}
  }
}`
	if err := os.WriteFile(configPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a := NewClaudeCodeAdapter(configPath, filepath.Join(dir, "skills"))
	mcps, err := a.ReadMCPs()
	if err != nil {
		t.Fatalf("ReadMCPs: %v", err)
	}
	if len(mcps) != 2 {
		t.Fatalf("got %d servers, want 2", len(mcps))
	}

	names := []string{mcps[0].Name, mcps[1].Name}
	sort.Strings(names)
	if names[0] != "[api] db" || names[1] != "[web] db" {
		t.Errorf("display names = %v", names)
	}

	for _, m := range mcps {
		if m.Name == "[web] db" {
			if m.Command != "(HTTP)" || len(m.Args) != 1 || m.Args[0] != "http://localhost:9000" {
				t.Errorf("http server mapped wrong: %+v", m)
			}
		}
	}

	// Round trip an edit into the right project.
	if err := a.SaveMCP(MCPServer{Name: "[api] db", Command: "pgmcp2", Args: []string{"--fast"}, Env: map[string]string{}}); err != nil {
		t.Fatalf("SaveMCP: %v", err)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	api := config["projects"].(map[string]any)["/home/dev/api"].(map[string]any)
	db := api["mcpServers"].(map[string]any)["db"].(map[string]any)
	if db["command"] != "pgmcp2" {
		t.Errorf("project entry not updated: %+v", db)
	}
}

func TestClaudeCodeAdapterSkills(t *testing.T) {
	dir := t.TempDir()
	skillsDir := filepath.Join(dir, "skills")
	a := NewClaudeCodeAdapter(filepath.Join(dir, ".claude.json"), skillsDir)

	if err := a.SaveSkill(Skill{Name: "code review", Content: "name: code review\ndescription: reviews diffs\n\nInstructions."}); err != nil {
		t.Fatalf("SaveSkill: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(skillsDir, "deploy"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(skillsDir, "deploy", "README.md"), []byte("no frontmatter"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	skills, err := a.ReadSkills()
	if err != nil {
		t.Fatalf("ReadSkills: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("got %d skills, want 2", len(skills))
	}

	byName := map[string]Skill{}
	for _, s := range skills {
		byName[s.Name] = s
	}
	if s, ok := byName["code review"]; !ok || s.Description != "reviews diffs" {
		t.Errorf("frontmatter skill: %+v", s)
	}
	if _, ok := byName["deploy"]; !ok {
		t.Error("README.md skill did not take its directory name")
	}

	if err := a.DeleteSkill("code review"); err != nil {
		t.Fatalf("DeleteSkill: %v", err)
	}
	skills, _ = a.ReadSkills()
	if len(skills) != 1 {
		t.Errorf("after delete: %d skills", len(skills))
	}
}

func TestFileAdapterJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	a := NewFileAdapter(path, "")

	if err := a.SaveMCP(MCPServer{Name: "search", Command: "mcp-search", Args: []string{"--local"}, Env: map[string]string{"KEY": "v"}}); err != nil {
		t.Fatalf("SaveMCP: %v", err)
	}

	mcps, err := a.ReadMCPs()
	if err != nil {
		t.Fatalf("ReadMCPs: %v", err)
	}
	if len(mcps) != 1 || mcps[0].Command != "mcp-search" || mcps[0].Env["KEY"] != "v" {
		t.Errorf("round trip: %+v", mcps)
	}

	if err := a.DeleteMCP("search"); err != nil {
		t.Fatalf("DeleteMCP: %v", err)
	}
	mcps, _ = a.ReadMCPs()
	if len(mcps) != 0 {
		t.Errorf("after delete: %+v", mcps)
	}
}

func TestFileAdapterYAMLPreservesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".aider.conf.yml")
	seed := "model: gpt-4o\nauto-commits: false\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a := NewFileAdapter(path, "")
	if err := a.SaveMCP(MCPServer{Name: "files", Command: "mcp-files"}); err != nil {
		t.Fatalf("SaveMCP: %v", err)
	}

	mcps, err := a.ReadMCPs()
	if err != nil {
		t.Fatalf("ReadMCPs: %v", err)
	}
	if len(mcps) != 1 || mcps[0].Name != "files" {
		t.Errorf("yaml round trip: %+v", mcps)
	}

	config, err := a.readConfig()
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if config["model"] != "gpt-4o" {
		t.Errorf("foreign yaml key lost: %v", config["model"])
	}
}

func TestFactoryHonorsOverrides(t *testing.T) {
	dir := t.TempDir()
	store := NewOverrideStoreAt(filepath.Join(dir, "config-paths.json"))

	custom := filepath.Join(dir, "elsewhere", "mcp.json")
	if err := store.Set(domain.CLICursor, OverridePaths{Config: custom}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	f := NewFactoryAt(dir, store)
	a, ok := f.For(domain.CLICursor).(*FileAdapter)
	if !ok {
		t.Fatalf("cursor adapter type %T", f.For(domain.CLICursor))
	}
	if a.configPath != custom {
		t.Errorf("configPath = %q, want override %q", a.configPath, custom)
	}
}

func TestRegistryConfigs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".claude.json"), []byte(`{"mcpServers": {"fs": {"command": "npx"}}}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := NewOverrideStoreAt(filepath.Join(dir, "config-paths.json"))
	factory := NewFactoryAt(dir, store)
	reg := NewRegistryAt(dir, factory, store, func() bool { return true })

	configs := reg.Configs()
	if len(configs) != 4 {
		t.Fatalf("got %d CLIs, want 4", len(configs))
	}

	var claude *CLIConfig
	for i := range configs {
		if configs[i].CLIType == domain.CLIClaudeCode {
			claude = &configs[i]
		} else if configs[i].IntegrationStatus != StatusUnsupported {
			t.Errorf("%s integration = %q, want unsupported", configs[i].CLIType, configs[i].IntegrationStatus)
		}
	}
	if claude == nil {
		t.Fatal("claude-code missing from registry")
	}
	if !claude.Installed {
		t.Error("claude-code not detected as installed")
	}
	if claude.IntegrationStatus != StatusIntegrated {
		t.Errorf("integration = %q", claude.IntegrationStatus)
	}
	if len(claude.MCPServers) != 1 || claude.MCPServers[0] != "fs" {
		t.Errorf("mcpServers = %v", claude.MCPServers)
	}
}
