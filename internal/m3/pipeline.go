// SPDX-License-Identifier: Apache-2.0

package m3

import (
	"github.com/questionforge/qforge-mcp/internal/question"
)

// Pipeline runs segmentation and extraction over one raw document.
type Pipeline struct {
	segmenter *Segmenter
	extractor *Extractor
}

// NewPipeline creates a Pipeline with the default segmenter and extractor.
func NewPipeline() *Pipeline {
	return &Pipeline{
		segmenter: NewSegmenter(),
		extractor: NewExtractor(),
	}
}

// RunResult is the output of a pipeline run.
type RunResult struct {
	Interpretations []*question.Interpretation
	SpanCount       int
	DroppedSpans    int
}

// Run segments the text and extracts an interpretation per span. Spans whose
// first line fails the question-header grammar are dropped, not errors.
func (p *Pipeline) Run(text string) RunResult {
	spans := p.segmenter.Segment(text)

	result := RunResult{SpanCount: len(spans)}
	for _, span := range spans {
		itp := p.extractor.Extract(span)
		if itp == nil {
			result.DroppedSpans++
			continue
		}
		result.Interpretations = append(result.Interpretations, itp)
	}
	return result
}
