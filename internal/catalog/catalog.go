// Package catalog holds the read-only resume template catalog and reads
// template content from the input directory.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/models"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Catalog is loaded once at start and never mutated afterwards, so it is
// safe for concurrent use.
type Catalog struct {
	templates []models.ResumeTemplate
	byKey     map[string]int
	fs        afero.Fs
	logger    logger.Logger
}

// New validates templates and binds content lookups to fs, which should be
// rooted at the template input directory.
func New(fs afero.Fs, templates []models.ResumeTemplate, log logger.Logger) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, errors.NewValidationError("templates", "catalog must contain at least one template")
	}

	c := &Catalog{
		templates: make([]models.ResumeTemplate, 0, len(templates)),
		byKey:     make(map[string]int, len(templates)),
		fs:        fs,
		logger:    logger.Component(log, "catalog"),
	}

	for _, t := range templates {
		if strings.TrimSpace(t.Key) == "" {
			return nil, errors.NewValidationError("key", "template key is required")
		}
		if _, dup := c.byKey[t.Key]; dup {
			return nil, errors.NewValidationError("key", "duplicate template key: "+t.Key)
		}
		if t.Name == "" {
			t.Name = t.Key
		}
		t.TargetRoles = append([]string(nil), t.TargetRoles...)
		t.Keywords = normalizeKeywords(t.Keywords)

		c.byKey[t.Key] = len(c.templates)
		c.templates = append(c.templates, t)
	}

	return c, nil
}

// fileFormat is the YAML layout of a catalog override file.
type fileFormat struct {
	Templates []models.ResumeTemplate `yaml:"templates"`
}

// LoadFile reads a YAML catalog from path on fs.
func LoadFile(fs afero.Fs, path string) ([]models.ResumeTemplate, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.NewIOFailureError("read", path, err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewValidationError("catalog", fmt.Sprintf("parse %s: %v", path, err))
	}
	return f.Templates, nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []models.ResumeTemplate {
	out := make([]models.ResumeTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get returns a template by key.
func (c *Catalog) Get(key string) (models.ResumeTemplate, error) {
	i, ok := c.byKey[key]
	if !ok {
		return models.ResumeTemplate{}, errors.NewNotFoundError("template", key)
	}
	return c.templates[i], nil
}

// Default is the first catalog entry.
func (c *Catalog) Default() models.ResumeTemplate {
	return c.templates[0]
}

// Load reads the content backing key. An unknown key or a missing file is
// NOT_FOUND; any other read error is IO_FAILURE.
func (c *Catalog) Load(key string) (string, error) {
	if _, err := c.Get(key); err != nil {
		return "", err
	}

	data, err := afero.ReadFile(c.fs, key)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("template content", key)
		}
		return "", errors.NewIOFailureError("read", key, err)
	}

	c.logger.Debug("template loaded", map[string]interface{}{
		"template": key,
		"bytes":    len(data),
	})
	return string(data), nil
}

// Validate reports whether key is in the catalog and its content is readable.
func (c *Catalog) Validate(key string) bool {
	if _, err := c.Load(key); err != nil {
		c.logger.Warn("template validation failed", map[string]interface{}{
			"template": key,
			"error":    err,
		})
		return false
	}
	return true
}

// Describe renders the catalog for operators, sorted by key.
func (c *Catalog) Describe() string {
	sorted := c.List()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var b strings.Builder
	b.WriteString("Available resume templates\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")
	for _, t := range sorted {
		fmt.Fprintf(&b, "%s\n", t.Name)
		fmt.Fprintf(&b, "   File: %s\n", t.Key)
		fmt.Fprintf(&b, "   Target roles: %s\n", strings.Join(t.TargetRoles, ", "))
		fmt.Fprintf(&b, "   Description: %s\n", t.Description)
		fmt.Fprintf(&b, "   Keywords: %s\n", strings.Join(t.Keywords, ", "))
		if t.Priority != 0 {
			fmt.Fprintf(&b, "   Priority: %d\n", t.Priority)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// normalizeKeywords lower-cases and de-duplicates, keeping first occurrence order.
func normalizeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
