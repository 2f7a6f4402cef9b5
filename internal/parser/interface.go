package parser

import (
	"context"

	"github.com/losb/stackcheck/internal/manifest"
)

// Result is everything known about one manifest after loading.
type Result struct {
	Path string
	// Document is nil when DocErr is set.
	Document *Document
	DocErr   error
	// Project is nil when the document could not be loaded as a compose
	// project; LoadErr then carries the reason.
	Project *manifest.Project
	LoadErr error
}

// OK reports whether both the raw document and the compose model loaded.
func (r *Result) OK() bool {
	return r.DocErr == nil && r.LoadErr == nil
}

// Parser loads a deployment manifest.
type Parser interface {
	// Parse reads the manifest at path. The error is reserved for failures
	// to read the file; syntax and load problems are reported on Result.
	Parse(ctx context.Context, path string) (*Result, error)
}
