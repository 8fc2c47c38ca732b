package configadapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// displayNameRe splits the "[project] server" composite names used for
// per-project MCP entries.
var displayNameRe = regexp.MustCompile(`^\[(.+)\]\s+(.+)$`)

// ClaudeCodeAdapter manages ~/.claude.json, which carries either a
// legacy top-level mcpServers map or a per-project projects map, and
// the markdown skills under ~/.claude/skills.
type ClaudeCodeAdapter struct {
	configPath string
	skillsDir  string
}

func NewClaudeCodeAdapter(configPath, skillsDir string) *ClaudeCodeAdapter {
	return &ClaudeCodeAdapter{configPath: configPath, skillsDir: skillsDir}
}

func (a *ClaudeCodeAdapter) readConfig() (map[string]any, error) {
	data, err := os.ReadFile(a.configPath)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.configPath, err)
	}
	return config, nil
}

func (a *ClaudeCodeAdapter) writeConfig(config map[string]any) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(a.configPath, data, 0o644)
}

// ReadMCPs lists every configured MCP server. Per-project entries get
// a "[project] name" display name since the same server name can
// repeat across projects.
func (a *ClaudeCodeAdapter) ReadMCPs() ([]MCPServer, error) {
	config, err := a.readConfig()
	if err != nil {
		return nil, err
	}

	projects, hasProjects := config["projects"].(map[string]any)

	if raw, ok := config["mcpServers"].(map[string]any); ok && !hasProjects {
		return mcpsFromMap(raw, ""), nil
	}

	var servers []MCPServer
	if hasProjects {
		for projectPath, v := range projects {
			project, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if raw, ok := project["mcpServers"].(map[string]any); ok {
				servers = append(servers, mcpsFromMap(raw, filepath.Base(projectPath))...)
			}
		}
	}
	return servers, nil
}

func mcpsFromMap(raw map[string]any, project string) []MCPServer {
	var servers []MCPServer
	for name, v := range raw {
		cfg, ok := v.(map[string]any)
		if !ok {
			continue
		}
		display := name
		if project != "" {
			display = fmt.Sprintf("[%s] %s", project, name)
		}

		server := MCPServer{Name: display, Env: stringMap(cfg["env"])}
		if str(cfg["type"]) == "http" {
			server.Command = "(HTTP)"
			server.Args = []string{str(cfg["url"])}
		} else {
			server.Command = str(cfg["command"])
			server.Args = stringSlice(cfg["args"])
		}
		servers = append(servers, server)
	}
	return servers
}

// SaveMCP writes the entry back where it came from: a project when the
// name carries a "[project]" prefix, the legacy top-level map
// otherwise.
func (a *ClaudeCodeAdapter) SaveMCP(mcp MCPServer) error {
	config, err := a.readConfig()
	if err != nil {
		return err
	}

	entry := map[string]any{"env": mcp.Env}
	if mcp.Command == "(HTTP)" {
		entry["type"] = "http"
		if len(mcp.Args) > 0 {
			entry["url"] = mcp.Args[0]
		}
	} else {
		entry["type"] = "stdio"
		entry["command"] = mcp.Command
		entry["args"] = mcp.Args
	}

	if project, name, ok := splitDisplayName(mcp.Name); ok {
		target, found := findProject(config, project)
		if !found {
			return fmt.Errorf("project %q not found in %s", project, a.configPath)
		}
		servers, ok := target["mcpServers"].(map[string]any)
		if !ok {
			servers = map[string]any{}
			target["mcpServers"] = servers
		}
		servers[name] = entry
		return a.writeConfig(config)
	}

	servers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		servers = map[string]any{}
		config["mcpServers"] = servers
	}
	servers[mcp.Name] = map[string]any{
		"command": mcp.Command,
		"args":    mcp.Args,
		"env":     mcp.Env,
	}
	return a.writeConfig(config)
}

func (a *ClaudeCodeAdapter) DeleteMCP(name string) error {
	config, err := a.readConfig()
	if err != nil {
		return err
	}

	if project, realName, ok := splitDisplayName(name); ok {
		if target, found := findProject(config, project); found {
			if servers, ok := target["mcpServers"].(map[string]any); ok {
				delete(servers, realName)
				return a.writeConfig(config)
			}
		}
	}

	if servers, ok := config["mcpServers"].(map[string]any); ok {
		if _, exists := servers[name]; exists {
			delete(servers, name)
			return a.writeConfig(config)
		}
	}
	return nil
}

func splitDisplayName(name string) (project, server string, ok bool) {
	m := displayNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func findProject(config map[string]any, projectName string) (map[string]any, bool) {
	projects, ok := config["projects"].(map[string]any)
	if !ok {
		return nil, false
	}
	for path, v := range projects {
		if filepath.Base(path) != projectName {
			continue
		}
		if project, ok := v.(map[string]any); ok {
			return project, true
		}
	}
	return nil, false
}

func (a *ClaudeCodeAdapter) ReadSkills() ([]Skill, error) {
	return readSkillsDir(a.skillsDir)
}

func (a *ClaudeCodeAdapter) SaveSkill(skill Skill) error {
	return saveSkillTo(a.skillsDir, skill)
}

func (a *ClaudeCodeAdapter) DeleteSkill(name string) error {
	return deleteSkillFrom(a.skillsDir, name)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringMap(v any) map[string]string {
	raw, ok := v.(map[string]any)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for k, item := range raw {
		if s, ok := item.(string); ok {
			out[k] = s
		}
	}
	return out
}
