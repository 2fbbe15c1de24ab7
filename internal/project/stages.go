// SPDX-License-Identifier: Apache-2.0

package project

import (
	"fmt"
	"path"
)

// ModuleOrder is the fixed M1-M5 methodology sequence.
var ModuleOrder = []string{"m1", "m2", "m3", "m4", "m5"}

// stageDir holds the static stage documents, one markdown file per module.
const stageDir = "stages"

// StageDoc is one loaded stage document plus workflow position.
type StageDoc struct {
	Module     string `json:"module"`
	Title      string `json:"title,omitempty"`
	Content    string `json:"content"`
	NextModule string `json:"next_module,omitempty"`
	Completed  bool   `json:"completed"`
}

// LoadStage reads the stage document for a module. An empty module name
// loads the next incomplete module in order; when every module is complete,
// the last one is returned with Completed set.
func (s *Store) LoadStage(module string) (*StageDoc, error) {
	doc, err := s.LoadMethodology()
	if err != nil {
		return nil, err
	}

	if module == "" {
		module = nextModule(doc)
	} else if !validModule(module) {
		return nil, fmt.Errorf("unknown module %q", module)
	}

	material, err := s.ReadMaterial(path.Join(stageDir, module+".md"))
	if err != nil {
		return nil, fmt.Errorf("loading stage document for %s: %w", module, err)
	}

	return &StageDoc{
		Module:     module,
		Title:      material.Title(),
		Content:    material.Body,
		NextModule: followingModule(module),
		Completed:  doc.StageCompleted(module, "complete"),
	}, nil
}

// nextModule returns the first module whose "complete" stage is not yet
// recorded, or the last module when everything is done.
func nextModule(doc *Methodology) string {
	for _, module := range ModuleOrder {
		if !doc.StageCompleted(module, "complete") {
			return module
		}
	}
	return ModuleOrder[len(ModuleOrder)-1]
}

func followingModule(module string) string {
	for i, m := range ModuleOrder {
		if m == module && i+1 < len(ModuleOrder) {
			return ModuleOrder[i+1]
		}
	}
	return ""
}

func validModule(module string) bool {
	for _, m := range ModuleOrder {
		if m == module {
			return true
		}
	}
	return false
}
