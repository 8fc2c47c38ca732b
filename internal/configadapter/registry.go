package configadapter

import (
	"os"
	"path/filepath"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

// IntegrationStatus says whether a CLI reports events to the tracker.
type IntegrationStatus string

const (
	StatusIntegrated    IntegrationStatus = "integrated"
	StatusNotIntegrated IntegrationStatus = "not-integrated"
	StatusUnsupported   IntegrationStatus = "unsupported"
)

// CLIDefinition describes one supported CLI: where its config lives
// and whether automatic hook integration is available.
type CLIDefinition struct {
	CLIType              domain.CLIType
	Name                 string
	DefaultConfigPath    string
	DefaultSkillsDir     string
	DetectPaths          []string
	SupportedIntegration bool
}

// CLIConfig is the assembled view of one CLI for the API.
type CLIConfig struct {
	CLIType           domain.CLIType    `json:"cliType"`
	Name              string            `json:"name"`
	Installed         bool              `json:"installed"`
	IntegrationStatus IntegrationStatus `json:"integrationStatus"`
	ConfigPaths       []string          `json:"configPaths"`
	MCPServers        []string          `json:"mcpServers"`
	MCPDetails        []MCPServer       `json:"mcpDetails"`
	Skills            []string          `json:"skills"`
	SkillDetails      []Skill           `json:"skillDetails"`
}

// Registry detects installed CLIs and assembles their configuration
// views.
type Registry struct {
	home        string
	factory     *Factory
	overrides   *OverrideStore
	definitions []CLIDefinition
	// integrated reports whether the tracker hooks are installed for
	// CLIs that support automatic integration.
	integrated func() bool
}

func NewRegistry(factory *Factory, integrated func() bool) (*Registry, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewRegistryAt(home, factory, NewOverrideStore(), integrated), nil
}

func NewRegistryAt(home string, factory *Factory, overrides *OverrideStore, integrated func() bool) *Registry {
	return &Registry{
		home:        home,
		factory:     factory,
		overrides:   overrides,
		definitions: definitionsFor(home),
		integrated:  integrated,
	}
}

func definitionsFor(home string) []CLIDefinition {
	return []CLIDefinition{
		{
			CLIType:           domain.CLIClaudeCode,
			Name:              "Claude Code",
			DefaultConfigPath: filepath.Join(home, ".claude.json"),
			DefaultSkillsDir:  filepath.Join(home, ".claude", "skills"),
			DetectPaths: []string{
				filepath.Join(home, ".claude.json"),
				filepath.Join(home, ".claude", "settings.json"),
			},
			SupportedIntegration: true,
		},
		{
			CLIType:           domain.CLIAider,
			Name:              "Aider",
			DefaultConfigPath: filepath.Join(home, ".aider.conf.yml"),
			DetectPaths: []string{
				filepath.Join(home, ".aider.conf.yml"),
			},
		},
		{
			CLIType:           domain.CLICursor,
			Name:              "Cursor",
			DefaultConfigPath: filepath.Join(home, ".cursor", "mcp.json"),
			DetectPaths: []string{
				filepath.Join(home, ".cursor"),
			},
		},
		{
			CLIType:           domain.CLIGemini,
			Name:              "Gemini CLI",
			DefaultConfigPath: filepath.Join(home, ".gemini", "settings.json"),
			DetectPaths: []string{
				filepath.Join(home, ".gemini"),
			},
		},
	}
}

// Definitions returns the supported CLI list.
func (r *Registry) Definitions() []CLIDefinition {
	return r.definitions
}

// Configs assembles the full configuration view for every supported
// CLI. Adapter read failures degrade to an empty detail list rather
// than failing the whole call.
func (r *Registry) Configs() []CLIConfig {
	overrides := r.overrides.Load()

	configs := make([]CLIConfig, 0, len(r.definitions))
	for _, def := range r.definitions {
		ov := overrides[string(def.CLIType)]
		installed := r.isInstalled(def, ov)

		cfg := CLIConfig{
			CLIType:           def.CLIType,
			Name:              def.Name,
			Installed:         installed,
			IntegrationStatus: r.integrationStatus(def),
			ConfigPaths:       configPaths(def, ov),
			MCPServers:        []string{},
			MCPDetails:        []MCPServer{},
			Skills:            []string{},
			SkillDetails:      []Skill{},
		}

		if installed {
			if adapter := r.factory.For(def.CLIType); adapter != nil {
				if mcps, err := adapter.ReadMCPs(); err == nil {
					cfg.MCPDetails = mcps
					for _, m := range mcps {
						cfg.MCPServers = append(cfg.MCPServers, m.Name)
					}
				}
				if skills, err := adapter.ReadSkills(); err == nil {
					cfg.SkillDetails = skills
					for _, s := range skills {
						cfg.Skills = append(cfg.Skills, s.Name)
					}
				}
			}
		}
		configs = append(configs, cfg)
	}
	return configs
}

func (r *Registry) isInstalled(def CLIDefinition, ov OverridePaths) bool {
	if ov.Config != "" {
		if _, err := os.Stat(ov.Config); err == nil {
			return true
		}
	}
	for _, p := range def.DetectPaths {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

func (r *Registry) integrationStatus(def CLIDefinition) IntegrationStatus {
	if !def.SupportedIntegration {
		return StatusUnsupported
	}
	if r.integrated != nil && r.integrated() {
		return StatusIntegrated
	}
	return StatusNotIntegrated
}

func configPaths(def CLIDefinition, ov OverridePaths) []string {
	paths := []string{def.DefaultConfigPath}
	if ov.Config != "" {
		paths[0] = ov.Config
	}
	skills := def.DefaultSkillsDir
	if ov.Skills != "" {
		skills = ov.Skills
	}
	if skills != "" {
		paths = append(paths, skills)
	}
	return paths
}
