// SPDX-License-Identifier: Apache-2.0

// Package outputs renders the per-type M4 artifacts as markdown with YAML
// front matter. Each type's front matter validates against a CUE schema
// before anything is written.
package outputs

import (
	"fmt"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
)

// Known output types.
const (
	MaterialAnalysis   = "material_analysis"
	EmphasisPatterns   = "emphasis_patterns"
	Examples           = "examples"
	Misconceptions     = "misconceptions"
	LearningObjectives = "learning_objectives"
)

// Types lists the supported output types in methodology order.
var Types = []string{MaterialAnalysis, EmphasisPatterns, Examples, Misconceptions, LearningObjectives}

// schemas holds one CUE schema per output type; the common header fields are
// unified into each.
const commonSchema = `{
	type:    string & !=""
	title:   string & !=""
	module:  string & !=""
	created: string & !=""
}`

var schemas = map[string]string{
	MaterialAnalysis: `{
		source:       string & !=""
		key_concepts: [...string] & [_, ...]
		summary:      string & !=""
	}`,
	EmphasisPatterns: `{
		patterns: [...{
			pattern: string & !=""
			weight:  number & >=0 & <=1
		}] & [_, ...]
	}`,
	Examples: `{
		examples: [...{
			concept: string & !=""
			example: string & !=""
		}] & [_, ...]
	}`,
	Misconceptions: `{
		misconceptions: [...{
			claim:      string & !=""
			correction: string & !=""
		}] & [_, ...]
	}`,
	LearningObjectives: `{
		objectives: [...{
			id:    string & !=""
			text:  string & !=""
			bloom?: string
		}] & [_, ...]
	}`,
}

// Document is one output artifact before rendering.
type Document struct {
	Type    string
	Title   string
	Module  string
	Created time.Time
	Data    map[string]any
	Body    string
}

// SchemaError reports a front-matter schema violation, distinct from the
// field-level issues the completeness checker produces.
type SchemaError struct {
	OutputType string
	Err        error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("output %q violates its schema: %v", e.OutputType, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Validate checks a document's front matter against the schema for its type.
func Validate(outputType string, frontMatter map[string]any) error {
	schemaSrc, ok := schemas[outputType]
	if !ok {
		return fmt.Errorf("unknown output type %q", outputType)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(commonSchema).Unify(ctx.CompileString(schemaSrc))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling schema for %s: %w", outputType, err)
	}

	value := ctx.Encode(frontMatter)
	if err := value.Err(); err != nil {
		return &SchemaError{OutputType: outputType, Err: err}
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{OutputType: outputType, Err: err}
	}
	return nil
}

// Render validates the document and emits it as front-mattered markdown.
func Render(doc Document) ([]byte, error) {
	frontMatter := map[string]any{
		"type":    doc.Type,
		"title":   doc.Title,
		"module":  doc.Module,
		"created": doc.Created.Format(time.RFC3339),
	}
	for k, v := range doc.Data {
		frontMatter[k] = v
	}

	if err := Validate(doc.Type, frontMatter); err != nil {
		return nil, err
	}

	encoded, err := yaml.Marshal(frontMatter)
	if err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	if doc.Body != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(doc.Body, "\n"))
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// DefaultPath is the conventional project-relative location for an output.
func DefaultPath(module, outputType string) string {
	return fmt.Sprintf("outputs/%s_%s.md", module, outputType)
}
