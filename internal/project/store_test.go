// SPDX-License-Identifier: Apache-2.0

package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewStore_RejectsBadRoots(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewStore(file)
	assert.Error(t, err)
}

func TestStore_PathsStayInsideRoot(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.WriteFile("materials/week1.md", []byte("# Week 1")))
	data, err := s.ReadFile("materials/week1.md")
	require.NoError(t, err)
	assert.Equal(t, "# Week 1", string(data))

	for _, rel := range []string{
		"/etc/passwd",
		"../outside.md",
		"materials/../../outside.md",
	} {
		_, err := s.ReadFile(rel)
		assert.Error(t, err, rel)
		assert.Error(t, s.WriteFile(rel, []byte("x")), rel)
	}

	abs, err := s.Abs("outputs/questions.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "outputs", "questions.md"), abs)
}

func TestMethodology_Roundtrip(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.LoadMethodology()
	require.NoError(t, err)
	assert.Empty(t, doc.Modules, "missing file loads as an empty document")

	doc.CourseCode = "BIO101"
	doc.CourseTitle = "Biology Basics"
	doc.CompleteStage("m3", "parse")
	doc.CompleteStage("m3", "parse")
	doc.CompleteStage("m3", "complete")
	doc.RegisterOutput("m3", "question_bank", "outputs/m3_question_bank.md")
	require.NoError(t, s.SaveMethodology(doc))

	loaded, err := s.LoadMethodology()
	require.NoError(t, err)
	assert.Equal(t, "BIO101", loaded.CourseCode)
	assert.Equal(t, "Biology Basics", loaded.CourseTitle)
	assert.Equal(t, []string{"parse", "complete"}, loaded.Modules["m3"].CompletedStages, "CompleteStage is idempotent")
	assert.True(t, loaded.StageCompleted("m3", "parse"))
	assert.False(t, loaded.StageCompleted("m3", "review"))
	assert.False(t, loaded.StageCompleted("m4", "parse"))
	assert.True(t, loaded.HasOutput("m3", "question_bank"))
	assert.False(t, loaded.HasOutput("m3", "summary"))
	assert.False(t, loaded.HasOutput("m1", "question_bank"))
}

func TestReadMaterial_FrontMatter(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("materials/quiz.md", []byte(
		"---\ntitle: Week 1 Quiz\nmodule: m3\n---\n\n# Q1 - First question\n")))

	m, err := s.ReadMaterial("materials/quiz.md")
	require.NoError(t, err)
	assert.Equal(t, "Week 1 Quiz", m.Title())
	assert.Equal(t, "m3", m.FrontMatter["module"])
	assert.Equal(t, "\n# Q1 - First question\n", m.Body)
}

func TestReadMaterial_NoFrontMatter(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("plain.md", []byte("# Just markdown\n")))

	m, err := s.ReadMaterial("plain.md")
	require.NoError(t, err)
	assert.Empty(t, m.FrontMatter)
	assert.Empty(t, m.Title())
	assert.Equal(t, "# Just markdown\n", m.Body)
}

func TestReadMaterial_UnterminatedFrontMatter(t *testing.T) {
	s := newTestStore(t)
	content := "---\ntitle: broken\nno closing delimiter\n"
	require.NoError(t, s.WriteFile("broken.md", []byte(content)))

	m, err := s.ReadMaterial("broken.md")
	require.NoError(t, err)
	assert.Empty(t, m.FrontMatter)
	assert.Equal(t, content, m.Body, "unterminated blocks read as plain body")
}

func writeStageDocs(t *testing.T, s *Store) {
	t.Helper()
	for _, module := range ModuleOrder {
		content := "---\ntitle: Stage " + module + "\n---\nInstructions for " + module + ".\n"
		require.NoError(t, s.WriteFile(filepath.Join("stages", module+".md"), []byte(content)))
	}
}

func TestLoadStage_ExplicitModule(t *testing.T) {
	s := newTestStore(t)
	writeStageDocs(t, s)

	doc, err := s.LoadStage("m3")
	require.NoError(t, err)
	assert.Equal(t, "m3", doc.Module)
	assert.Equal(t, "Stage m3", doc.Title)
	assert.Contains(t, doc.Content, "Instructions for m3.")
	assert.Equal(t, "m4", doc.NextModule)
	assert.False(t, doc.Completed)

	_, err = s.LoadStage("m9")
	assert.Error(t, err)
}

func TestLoadStage_FollowsProgress(t *testing.T) {
	s := newTestStore(t)
	writeStageDocs(t, s)

	doc, err := s.LoadStage("")
	require.NoError(t, err)
	assert.Equal(t, "m1", doc.Module, "fresh projects start at m1")

	progress, err := s.LoadMethodology()
	require.NoError(t, err)
	progress.CompleteStage("m1", "complete")
	progress.CompleteStage("m2", "complete")
	require.NoError(t, s.SaveMethodology(progress))

	doc, err = s.LoadStage("")
	require.NoError(t, err)
	assert.Equal(t, "m3", doc.Module)
	assert.Equal(t, "m4", doc.NextModule)

	for _, module := range ModuleOrder {
		progress.CompleteStage(module, "complete")
	}
	require.NoError(t, s.SaveMethodology(progress))

	doc, err = s.LoadStage("")
	require.NoError(t, err)
	assert.Equal(t, "m5", doc.Module, "fully complete projects stay on the last module")
	assert.True(t, doc.Completed)
	assert.Empty(t, doc.NextModule)
}
