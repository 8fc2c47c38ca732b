// Package configadapter reads and writes the configuration files of
// the supported coding-assistant CLIs: MCP server entries and skills.
package configadapter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

// MCPServer is one MCP server entry in a CLI's configuration.
type MCPServer struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// Skill is one skill document, markdown with optional name and
// description frontmatter.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
	FilePath    string `json:"filePath"`
}

// Adapter hides the per-CLI configuration layout.
type Adapter interface {
	ReadMCPs() ([]MCPServer, error)
	SaveMCP(mcp MCPServer) error
	DeleteMCP(name string) error

	ReadSkills() ([]Skill, error)
	SaveSkill(skill Skill) error
	DeleteSkill(name string) error
}

// Overrides are user-chosen replacement paths per CLI type.
type Overrides map[string]OverridePaths

type OverridePaths struct {
	Config string `json:"config,omitempty"`
	Skills string `json:"skills,omitempty"`
}

// OverrideStore persists path overrides under ~/.agentboard.
type OverrideStore struct {
	path string
}

func NewOverrideStore() *OverrideStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return NewOverrideStoreAt(filepath.Join(home, ".agentboard", "config-paths.json"))
}

func NewOverrideStoreAt(path string) *OverrideStore {
	return &OverrideStore{path: path}
}

// Load returns the overrides, empty on any miss.
func (s *OverrideStore) Load() Overrides {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Overrides{}
	}
	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return Overrides{}
	}
	return o
}

// Set records one override and saves the file.
func (s *OverrideStore) Set(cliType domain.CLIType, paths OverridePaths) error {
	o := s.Load()
	current := o[string(cliType)]
	if paths.Config != "" {
		current.Config = paths.Config
	}
	if paths.Skills != "" {
		current.Skills = paths.Skills
	}
	o[string(cliType)] = current

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Factory builds the adapter for a CLI type, honoring overrides.
type Factory struct {
	home      string
	overrides *OverrideStore
}

func NewFactory() (*Factory, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFactoryAt(home, NewOverrideStore()), nil
}

func NewFactoryAt(home string, overrides *OverrideStore) *Factory {
	return &Factory{home: home, overrides: overrides}
}

// For returns the adapter for a built-in CLI type, or nil when the
// type has no configuration surface we know how to manage.
func (f *Factory) For(cliType domain.CLIType) Adapter {
	ov := f.overrides.Load()[string(cliType)]

	switch cliType {
	case domain.CLIClaudeCode:
		configPath := ov.Config
		if configPath == "" {
			configPath = filepath.Join(f.home, ".claude.json")
		}
		skillsDir := ov.Skills
		if skillsDir == "" {
			skillsDir = filepath.Join(f.home, ".claude", "skills")
		}
		return NewClaudeCodeAdapter(configPath, skillsDir)
	case domain.CLICursor:
		return f.fileAdapter(ov, filepath.Join(f.home, ".cursor", "mcp.json"))
	case domain.CLIGemini:
		return f.fileAdapter(ov, filepath.Join(f.home, ".gemini", "settings.json"))
	case domain.CLIAider:
		return f.fileAdapter(ov, filepath.Join(f.home, ".aider.conf.yml"))
	}
	return nil
}

// ForCustom builds an adapter for a user-defined CLI profile, picking
// the codec from the config file extension.
func (f *Factory) ForCustom(c *domain.CustomCLI) Adapter {
	if c.ConfigPath == "" {
		return nil
	}
	return NewFileAdapter(c.ConfigPath, c.SkillsPath)
}

func (f *Factory) fileAdapter(ov OverridePaths, defaultPath string) Adapter {
	path := ov.Config
	if path == "" {
		path = defaultPath
	}
	return NewFileAdapter(path, ov.Skills)
}
