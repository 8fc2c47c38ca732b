package configadapter

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	skillNameRe     = regexp.MustCompile(`(?m)^name:\s*(.+)$`)
	skillDescRe     = regexp.MustCompile(`(?m)^description:\s*(.+)$`)
	skillFileNameRe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// readSkillsDir walks a skills directory for markdown files. A missing
// directory is an empty result, not an error.
func readSkillsDir(dir string) ([]Skill, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var skills []Skill
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		skills = append(skills, parseSkill(path, string(content)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// parseSkill extracts the name and description frontmatter. A missing
// name falls back to the file name, or the parent directory for
// README.md.
func parseSkill(path, content string) Skill {
	skill := Skill{Content: content, FilePath: path}

	if m := skillNameRe.FindStringSubmatch(content); m != nil {
		skill.Name = strings.TrimSpace(m[1])
	}
	if skill.Name == "" {
		base := filepath.Base(path)
		if strings.EqualFold(base, "readme.md") {
			skill.Name = filepath.Base(filepath.Dir(path))
		} else {
			skill.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	if m := skillDescRe.FindStringSubmatch(content); m != nil {
		skill.Description = strings.TrimSpace(m[1])
	}
	return skill
}

func saveSkillTo(dir string, skill Skill) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := skill.FilePath
	if path == "" {
		path = filepath.Join(dir, skillFileNameRe.ReplaceAllString(skill.Name, "_")+".md")
	}
	return os.WriteFile(path, []byte(skill.Content), 0o644)
}

func deleteSkillFrom(dir, name string) error {
	skills, err := readSkillsDir(dir)
	if err != nil {
		return err
	}
	for _, s := range skills {
		if s.Name == name {
			return os.Remove(s.FilePath)
		}
	}
	return nil
}
