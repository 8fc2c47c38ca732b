package configadapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileAdapter manages a single config file holding a flat mcpServers
// map, which covers Cursor's mcp.json, Gemini's settings.json, Aider's
// YAML config and user-defined profiles. The codec follows the file
// extension.
type FileAdapter struct {
	configPath string
	skillsDir  string
	yaml       bool
}

type fileMCPEntry struct {
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

func NewFileAdapter(configPath, skillsDir string) *FileAdapter {
	ext := strings.ToLower(filepath.Ext(configPath))
	return &FileAdapter{
		configPath: configPath,
		skillsDir:  skillsDir,
		yaml:       ext == ".yml" || ext == ".yaml",
	}
}

func (a *FileAdapter) readConfig() (map[string]any, error) {
	data, err := os.ReadFile(a.configPath)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	config := map[string]any{}
	if a.yaml {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.configPath, err)
	}
	return config, nil
}

func (a *FileAdapter) writeConfig(config map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(a.configPath), 0o755); err != nil {
		return err
	}

	var data []byte
	var err error
	if a.yaml {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(a.configPath, data, 0o644)
}

func (a *FileAdapter) ReadMCPs() ([]MCPServer, error) {
	config, err := a.readConfig()
	if err != nil {
		return nil, err
	}

	raw, ok := config["mcpServers"].(map[string]any)
	if !ok {
		return nil, nil
	}

	var servers []MCPServer
	for name, v := range raw {
		cfg, ok := toStringKeyMap(v)
		if !ok {
			continue
		}
		servers = append(servers, MCPServer{
			Name:    name,
			Command: str(cfg["command"]),
			Args:    stringSlice(cfg["args"]),
			Env:     stringMap(cfg["env"]),
		})
	}
	return servers, nil
}

func (a *FileAdapter) SaveMCP(mcp MCPServer) error {
	config, err := a.readConfig()
	if err != nil {
		return err
	}

	servers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		servers = map[string]any{}
		config["mcpServers"] = servers
	}
	servers[mcp.Name] = fileMCPEntry{Command: mcp.Command, Args: mcp.Args, Env: mcp.Env}
	return a.writeConfig(config)
}

func (a *FileAdapter) DeleteMCP(name string) error {
	config, err := a.readConfig()
	if err != nil {
		return err
	}

	servers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		return nil
	}
	if _, exists := servers[name]; !exists {
		return nil
	}
	delete(servers, name)
	return a.writeConfig(config)
}

func (a *FileAdapter) ReadSkills() ([]Skill, error) {
	return readSkillsDir(a.skillsDir)
}

func (a *FileAdapter) SaveSkill(skill Skill) error {
	if a.skillsDir == "" {
		return fmt.Errorf("no skills directory configured")
	}
	return saveSkillTo(a.skillsDir, skill)
}

func (a *FileAdapter) DeleteSkill(name string) error {
	if a.skillsDir == "" {
		return nil
	}
	return deleteSkillFrom(a.skillsDir, name)
}

// toStringKeyMap normalizes the map types the two codecs produce. The
// YAML decoder can yield map[any]any for nested maps.
func toStringKeyMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, item := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = item
		}
		return out, true
	}
	return nil, false
}
