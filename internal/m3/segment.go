// SPDX-License-Identifier: Apache-2.0

package m3

import (
	"sort"
	"strings"
)

// Span is one contiguous slice of the source text identified as belonging to
// a single question. Line numbers are 1-based.
type Span struct {
	StartLine  int
	EndLine    int
	Text       string
	Pattern    string
	Confidence int
}

// Segmenter splits raw question documents into per-question spans using the
// heading cascade, falling back to looser heuristics when no structured
// heading is present anywhere in the text.
type Segmenter struct{}

// NewSegmenter creates a new Segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

type spanStart struct {
	line       int // 0-based index into lines
	pattern    string
	confidence int
}

// Segment returns the ordered, non-overlapping question spans of text.
// Spans run from the first detected heading to end of text; content before
// the first heading is not covered.
func (s *Segmenter) Segment(text string) []Span {
	lines := strings.Split(text, "\n")

	starts := s.headingStarts(lines)
	if len(starts) == 0 {
		starts = s.fallbackStarts(lines)
	}
	if len(starts) == 0 {
		return nil
	}

	sort.SliceStable(starts, func(i, j int) bool { return starts[i].line < starts[j].line })

	spans := make([]Span, 0, len(starts))
	for i, start := range starts {
		if i > 0 && start.line == starts[i-1].line {
			continue
		}
		end := len(lines) - 1
		for j := i + 1; j < len(starts); j++ {
			if starts[j].line > start.line {
				end = starts[j].line - 1
				break
			}
		}
		spans = append(spans, Span{
			StartLine:  start.line + 1,
			EndLine:    end + 1,
			Text:       strings.Join(lines[start.line:end+1], "\n"),
			Pattern:    start.pattern,
			Confidence: start.confidence,
		})
	}
	return spans
}

// headingStarts applies the structured heading cascade per line. The first
// rule that matches claims the line; later rules are not consulted.
func (s *Segmenter) headingStarts(lines []string) []spanStart {
	var starts []spanStart
	for i, line := range lines {
		for _, rule := range headingRules {
			if rule.re.MatchString(line) {
				starts = append(starts, spanStart{line: i, pattern: rule.label, confidence: rule.confidence})
				break
			}
		}
	}
	return starts
}

// fallbackStarts runs the loose heuristics used only when no structured
// heading matched at all: digit-bearing headings, Title markers resolved to
// the start of their enclosing block, and lines following a bare separator.
// Only the Title-marker rule checks for an already-claimed index.
func (s *Segmenter) fallbackStarts(lines []string) []spanStart {
	var starts []spanStart

	for i, line := range lines {
		if digitHeadingRe.MatchString(line) {
			starts = append(starts, spanStart{line: i, pattern: "fallback-digit-heading", confidence: fallbackDigitHeadingConfidence})
		}
	}

	claimed := make(map[int]bool, len(starts))
	for _, st := range starts {
		claimed[st.line] = true
	}
	for i, line := range lines {
		if !titleMarkerRe.MatchString(line) {
			continue
		}
		start := blockStart(lines, i)
		if claimed[start] {
			continue
		}
		claimed[start] = true
		starts = append(starts, spanStart{line: start, pattern: "fallback-title-marker", confidence: fallbackTitleMarkerConfidence})
	}

	for i := 1; i < len(lines); i++ {
		if separatorRe.MatchString(lines[i-1]) && strings.TrimSpace(lines[i]) != "" {
			starts = append(starts, spanStart{line: i, pattern: "fallback-separator", confidence: fallbackSeparatorConfidence})
		}
	}

	return starts
}

// blockStart scans upward from a Title marker to the previous blank line or
// separator, at most four lines back, returning the enclosing block's start.
func blockStart(lines []string, from int) int {
	start := from
	for back := 1; back <= 4; back++ {
		i := from - back
		if i < 0 {
			break
		}
		if strings.TrimSpace(lines[i]) == "" || separatorRe.MatchString(lines[i]) {
			break
		}
		start = i
	}
	return start
}
