package domain

// CustomCLI is a user-defined CLI profile. The tracker only consults it
// for display name and adapter selection.
type CustomCLI struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
	Color      string `json:"color,omitempty"`
	ConfigPath string `json:"configPath"`
	SkillsPath string `json:"skillsPath"`
	CreatedAt  int64  `json:"createdAt"`
}
