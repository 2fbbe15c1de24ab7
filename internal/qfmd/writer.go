// SPDX-License-Identifier: Apache-2.0

package qfmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/questionforge/qforge-mcp/internal/question"
)

// Writer appends rendered question blocks to one QFMD document. Writes use
// append mode so an interrupted write never rewrites earlier blocks; callers
// flip their in-memory state only after Append returns nil.
type Writer struct {
	path        string
	courseCode  string
	courseTitle string
	now         func() time.Time
}

// NewWriter creates a Writer for the given output path.
func NewWriter(path, courseCode, courseTitle string) *Writer {
	return &Writer{path: path, courseCode: courseCode, courseTitle: courseTitle, now: time.Now}
}

// Append renders the interpretation and appends it to the output file,
// creating the file with its header block on first use. When the existing
// tail ends with the end-field sentinel, a "---" divider separates blocks;
// otherwise a plain newline does.
func (w *Writer) Append(itp *question.Interpretation) error {
	block := Render(itp, w.courseCode, w.courseTitle)

	existing, err := os.ReadFile(w.path)
	switch {
	case os.IsNotExist(err):
		return w.writeNew(block)
	case err != nil:
		return fmt.Errorf("reading output file: %w", err)
	}

	separator := "\n"
	if strings.HasSuffix(strings.TrimRight(string(existing), "\n"), EndFieldSentinel) {
		separator = "\n---\n\n"
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(separator + block); err != nil {
		return fmt.Errorf("appending question block: %w", err)
	}
	return nil
}

func (w *Writer) writeNew(block string) error {
	var b strings.Builder
	b.WriteString("<!-- QFMD Format v1 -->\n")
	fmt.Fprintf(&b, "<!-- Generated: %s -->\n", w.now().Format(time.RFC3339))
	if w.courseTitle != "" {
		fmt.Fprintf(&b, "<!-- Title: %s -->\n", w.courseTitle)
	}
	if w.courseCode != "" {
		fmt.Fprintf(&b, "<!-- Course: %s -->\n", w.courseCode)
	}
	b.WriteString("\n")
	b.WriteString(block)

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing output header: %w", err)
	}
	return nil
}
