// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// Material is one source document: markdown with an optional YAML
// front-matter block.
type Material struct {
	Path        string
	FrontMatter map[string]any
	Body        string
}

// Title returns the front-matter title, or empty.
func (m *Material) Title() string {
	if v, ok := m.FrontMatter["title"].(string); ok {
		return v
	}
	return ""
}

// ReadMaterial loads a markdown document from the project, splitting off a
// leading front-matter block when one is present. Documents without
// front-matter parse with an empty map.
func (s *Store) ReadMaterial(rel string) (*Material, error) {
	data, err := s.ReadFile(rel)
	if err != nil {
		return nil, err
	}

	frontMatter, body, err := splitFrontMatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	return &Material{Path: rel, FrontMatter: frontMatter, Body: body}, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body.
func splitFrontMatter(content string) (map[string]any, string, error) {
	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return map[string]any{}, content, nil
	}

	rest := strings.TrimPrefix(content, "---\n")
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return map[string]any{}, content, nil
	}
	block := rest[:idx]
	body := rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	frontMatter := make(map[string]any)
	if err := yaml.Unmarshal([]byte(block), &frontMatter); err != nil {
		return nil, "", fmt.Errorf("parsing front matter: %w", err)
	}
	return frontMatter, body, nil
}
