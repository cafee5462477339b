// Package curriculum loads the subject/chapter catalog offered to users as
// suggestions. Any free-text subject and chapter is still accepted by the
// pipeline; the catalog only feeds the selection UI.
package curriculum

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Subject is one catalog entry with its suggested chapters.
type Subject struct {
	Name     string   `yaml:"name" json:"name"`
	Chapters []string `yaml:"chapters" json:"chapters"`
}

type catalogFile struct {
	Subjects []Subject `yaml:"subjects"`
}

// Catalog holds the loaded subjects, keyed case-insensitively.
type Catalog struct {
	mu       sync.RWMutex
	subjects map[string]Subject
}

var titleCaser = cases.Title(language.English)

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{subjects: make(map[string]Subject)}
	// The embedded catalog is validated by tests; a parse failure here is a
	// build defect, not a runtime condition.
	if err := c.merge(defaultCatalog); err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads all catalog YAML files under dir, falling back to the built-in
// catalog when dir is empty or holds no valid files.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return Default(), nil
	}

	c := &Catalog{subjects: make(map[string]Subject)}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := c.merge(data); err != nil {
			slog.Warn("skipping invalid catalog YAML", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if len(c.subjects) == 0 {
		slog.Info("no catalog files found, using built-in catalog", "dir", dir)
		return Default(), nil
	}

	slog.Info("catalog loaded", "dir", dir, "subjects", len(c.subjects))
	return c, nil
}

func (c *Catalog) merge(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, subject := range file.Subjects {
		if subject.Name == "" {
			continue
		}
		subject.Name = displayName(subject.Name)
		c.subjects[strings.ToLower(subject.Name)] = subject
	}
	return nil
}

// Subjects returns all subjects sorted by name.
func (c *Catalog) Subjects() []Subject {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Subject, 0, len(c.subjects))
	for _, s := range c.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Chapters returns the suggested chapters for a subject, matched
// case-insensitively.
func (c *Catalog) Chapters(subject string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.subjects[strings.ToLower(strings.TrimSpace(subject))]
	if !ok {
		return nil, false
	}
	return append([]string(nil), s.Chapters...), true
}

// displayName normalizes a subject name for display, so catalog files may
// use any casing.
func displayName(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}
