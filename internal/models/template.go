package models

import "strings"

// ResumeTemplate is a read-only catalog entry. Key doubles as the file name
// of the template content under the input directory.
type ResumeTemplate struct {
	Key         string   `json:"key" yaml:"key"`
	Name        string   `json:"name" yaml:"name"`
	TargetRoles []string `json:"targetRoles" yaml:"target_roles"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Priority    int      `json:"priority" yaml:"priority"`
}

const (
	templateKeyPrefix = "resume_"
	templateKeySuffix = ".md"
)

// SemanticType strips the fixed prefix and extension from the key:
// "resume_consultant.md" -> "consultant".
func (t ResumeTemplate) SemanticType() string {
	return SemanticType(t.Key)
}

// SemanticType is the key-only form of ResumeTemplate.SemanticType.
func SemanticType(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, templateKeyPrefix), templateKeySuffix)
}

// HasRole reports whether any target role matches exactly (case-insensitive).
func (t ResumeTemplate) HasRole(role string) bool {
	for _, r := range t.TargetRoles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
