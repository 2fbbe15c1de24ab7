// SPDX-License-Identifier: Apache-2.0

package qfmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questionforge/qforge-mcp/internal/question"
)

func writerFixture(num string) *question.Interpretation {
	itp := &question.Interpretation{QuestionNumber: num}
	itp.Fields.Title = question.Extracted("Title "+num, 95, "header")
	itp.Fields.Type = question.Extracted(string(question.TrueFalse), 95, "metadata")
	itp.Fields.Stem = question.Extracted("Statement "+num, 95, "stem_section")
	itp.Fields.Answer = question.Extracted("A", 95, "correct_answer_field")
	itp.Fields.Points = question.Extracted(1, 95, "metadata")
	return itp
}

func newTestWriter(t *testing.T, courseCode, courseTitle string) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.md")
	w := NewWriter(path, courseCode, courseTitle)
	w.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return w, path
}

func TestWriter_CreatesFileWithHeader(t *testing.T) {
	w, path := newTestWriter(t, "BIO101", "Biology Basics")

	require.NoError(t, w.Append(writerFixture("Q1")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "<!-- QFMD Format v1 -->\n"))
	assert.Contains(t, content, "<!-- Generated: 2026-03-14T09:30:00Z -->\n")
	assert.Contains(t, content, "<!-- Title: Biology Basics -->\n")
	assert.Contains(t, content, "<!-- Course: BIO101 -->\n")
	assert.Contains(t, content, "<!-- Q001: Title Q1 -->\n")
	assert.Contains(t, content, "^question Q001\n")
}

func TestWriter_HeaderOmitsEmptyCourseFields(t *testing.T) {
	w, path := newTestWriter(t, "", "")

	require.NoError(t, w.Append(writerFixture("Q1")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<!-- Title:")
	assert.NotContains(t, string(data), "<!-- Course:")
}

func TestWriter_AppendsWithDivider(t *testing.T) {
	w, path := newTestWriter(t, "BIO101", "")

	require.NoError(t, w.Append(writerFixture("Q1")))
	require.NoError(t, w.Append(writerFixture("Q2")))
	require.NoError(t, w.Append(writerFixture("Q3")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Equal(t, 2, strings.Count(content, "\n---\n"))
	assert.Equal(t, 1, strings.Count(content, "<!-- QFMD Format v1 -->"))

	// Earlier blocks survive later appends intact and in order.
	q1 := strings.Index(content, "^question Q001")
	q2 := strings.Index(content, "^question Q002")
	q3 := strings.Index(content, "^question Q003")
	require.GreaterOrEqual(t, q1, 0)
	assert.Greater(t, q2, q1)
	assert.Greater(t, q3, q2)
}

func TestWriter_AppendsToForeignTailWithoutDivider(t *testing.T) {
	w, path := newTestWriter(t, "BIO101", "")
	require.NoError(t, os.WriteFile(path, []byte("manual notes, no sentinel\n"), 0o644))

	require.NoError(t, w.Append(writerFixture("Q1")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "manual notes, no sentinel\n"))
	assert.NotContains(t, content, "\n---\n")
	assert.Contains(t, content, "^question Q001\n")
}

func TestWriter_PropagatesPathErrors(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "BIO101", "")

	err := w.Append(writerFixture("Q1"))
	require.Error(t, err)
}
