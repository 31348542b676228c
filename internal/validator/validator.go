// Package validator checks a document collection before it is served.
// It verifies identity fields, flags duplicate ids and labels, and analyzes
// content size.
package validator

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/search"
)

// MaxContentBytes is the body size above which a page is reported as large.
const MaxContentBytes = 512 * 1024

// Validator validates document collections.
type Validator struct {
	logger *zap.Logger
}

// Report holds the outcome of a validation run.
type Report struct {
	Errors   []string
	Warnings []string
	// TotalBytes is the sum of all content lengths.
	TotalBytes int
	// Largest lists up to five documents by content size, largest first.
	Largest []DocSize
}

// DocSize is the content size of one document.
type DocSize struct {
	ID    string
	Bytes int
}

// OK reports whether validation found no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// New creates a new Validator instance. A nil logger disables logging.
func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Validate checks docs. Missing or duplicate ids and missing labels or hrefs
// are errors; duplicate labels, pages without content and oversized pages
// are warnings.
func (v *Validator) Validate(docs []search.Document) *Report {
	report := &Report{}
	v.logger.Info("validating documents", zap.Int("documents", len(docs)))

	seenIDs := make(map[string]int)
	seenLabels := make(map[string]string)
	var sizes []DocSize

	for i, doc := range docs {
		ref := doc.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i)
			report.Errors = append(report.Errors, fmt.Sprintf("document %s has no id", ref))
		} else if first, dup := seenIDs[doc.ID]; dup {
			report.Errors = append(report.Errors, fmt.Sprintf("duplicate id %q (documents #%d and #%d)", doc.ID, first, i))
		} else {
			seenIDs[doc.ID] = i
		}

		if doc.Label == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("document %s has no label", ref))
		} else {
			key := search.Normalize(doc.Label)
			if other, dup := seenLabels[key]; dup {
				report.Warnings = append(report.Warnings, fmt.Sprintf("documents %s and %s share the label %q", other, ref, doc.Label))
			} else {
				seenLabels[key] = ref
			}
		}

		if doc.Href == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("document %s has no href", ref))
		}

		if doc.Content == nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("document %s has no content and is searchable by title only", ref))
			continue
		}
		n := len(*doc.Content)
		report.TotalBytes += n
		sizes = append(sizes, DocSize{ID: ref, Bytes: n})
		if n > MaxContentBytes {
			report.Warnings = append(report.Warnings, fmt.Sprintf("document %s content is %.1f KB", ref, float64(n)/1024))
		}
	}

	sort.SliceStable(sizes, func(i, j int) bool {
		return sizes[i].Bytes > sizes[j].Bytes
	})
	if len(sizes) > 5 {
		sizes = sizes[:5]
	}
	report.Largest = sizes

	v.logReport(report)
	return report
}

func (v *Validator) logReport(r *Report) {
	v.logger.Info("content size",
		zap.Float64("total_kb", float64(r.TotalBytes)/1024),
		zap.Int("documents_with_content", len(r.Largest)),
	)
	for _, s := range r.Largest {
		v.logger.Debug("large document", zap.String("id", s.ID), zap.Int("bytes", s.Bytes))
	}
	for _, w := range r.Warnings {
		v.logger.Debug("validation warning", zap.String("detail", w))
	}
	for _, e := range r.Errors {
		v.logger.Debug("validation error", zap.String("detail", e))
	}
	if r.OK() {
		v.logger.Info("validation passed", zap.Int("warnings", len(r.Warnings)))
	} else {
		v.logger.Error("validation failed", zap.Int("errors", len(r.Errors)), zap.Int("warnings", len(r.Warnings)))
	}
}
