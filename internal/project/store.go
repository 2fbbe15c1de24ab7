// SPDX-License-Identifier: Apache-2.0

// Package project is the sandboxed file store for one QuestionForge project:
// the methodology progress document, stage documents, source materials and
// registered outputs all live under the project root.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// MethodologyFile is the project progress document, relative to the root.
const MethodologyFile = "project.yaml"

// Store reads and writes files under one project root. Paths are always
// relative; anything escaping the root is rejected.
type Store struct {
	root string
}

// NewStore opens a project root. The directory must exist.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", abs)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute project root.
func (s *Store) Root() string { return s.root }

func (s *Store) resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q must be relative to the project root", rel)
	}
	joined := filepath.Join(s.root, rel)
	if joined != s.root && !strings.HasPrefix(joined, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the project root", rel)
	}
	return joined, nil
}

// ReadFile reads a project-relative file.
func (s *Store) ReadFile(rel string) ([]byte, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// WriteFile writes a project-relative file, creating parent directories.
func (s *Store) WriteFile(rel string, data []byte) error {
	path, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Abs resolves a project-relative path for callers that need to hand it to
// an external writer.
func (s *Store) Abs(rel string) (string, error) {
	return s.resolve(rel)
}

// ModuleState tracks one methodology module's progress.
type ModuleState struct {
	CompletedStages []string          `yaml:"completed_stages"`
	Outputs         map[string]string `yaml:"outputs,omitempty"`
}

// Methodology is the project progress document:
// methodology.<module>.{completed_stages, outputs}.
type Methodology struct {
	CourseCode  string                 `yaml:"course_code,omitempty"`
	CourseTitle string                 `yaml:"course_title,omitempty"`
	Modules     map[string]ModuleState `yaml:"methodology"`
}

// LoadMethodology reads the progress document. A missing file yields an
// empty document, not an error.
func (s *Store) LoadMethodology() (*Methodology, error) {
	data, err := s.ReadFile(MethodologyFile)
	if os.IsNotExist(err) {
		return &Methodology{Modules: make(map[string]ModuleState)}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc Methodology
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MethodologyFile, err)
	}
	if doc.Modules == nil {
		doc.Modules = make(map[string]ModuleState)
	}
	return &doc, nil
}

// SaveMethodology writes the progress document back.
func (s *Store) SaveMethodology(doc *Methodology) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", MethodologyFile, err)
	}
	return s.WriteFile(MethodologyFile, data)
}

// HasOutput reports whether an output of the given type is registered for
// the module.
func (m *Methodology) HasOutput(module, outputType string) bool {
	state, ok := m.Modules[module]
	if !ok {
		return false
	}
	_, ok = state.Outputs[outputType]
	return ok
}

// RegisterOutput records the path of a produced output.
func (m *Methodology) RegisterOutput(module, outputType, path string) {
	state := m.Modules[module]
	if state.Outputs == nil {
		state.Outputs = make(map[string]string)
	}
	state.Outputs[outputType] = path
	m.Modules[module] = state
}

// CompleteStage marks a stage complete for the module. Idempotent.
func (m *Methodology) CompleteStage(module, stage string) {
	state := m.Modules[module]
	for _, done := range state.CompletedStages {
		if done == stage {
			return
		}
	}
	state.CompletedStages = append(state.CompletedStages, stage)
	m.Modules[module] = state
}

// StageCompleted reports whether the stage is already done.
func (m *Methodology) StageCompleted(module, stage string) bool {
	for _, done := range m.Modules[module].CompletedStages {
		if done == stage {
			return true
		}
	}
	return false
}
