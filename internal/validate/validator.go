// Package validate checks a loaded deployment manifest for structural
// problems: syntax, referential consistency, port mappings, documented
// environment, image references, build inputs and start ordering.
package validate

import (
	"context"
	"strings"

	"github.com/losb/stackcheck/internal/environment"
	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/losb/stackcheck/internal/parser"
	"golang.org/x/sync/errgroup"
)

// Input is what the rules inspect.
type Input struct {
	FS     filesystems.FileSystem
	Result *parser.Result
	// Requirements may be nil, in which case the environment rule is skipped.
	Requirements *environment.Requirements
}

func (in *Input) doc() *parser.Document {
	if in.Result == nil {
		return nil
	}
	return in.Result.Document
}

// line looks up path in the raw document, tolerating a missing document.
func (in *Input) line(path ...string) int {
	doc := in.doc()
	if doc == nil {
		return 0
	}
	return doc.Line(path...)
}

// resolve interprets p relative to the manifest directory.
func (in *Input) resolve(p string) string {
	if in.FS.IsAbs(p) {
		return p
	}
	return in.FS.Join(in.FS.Dir(in.Result.Path), p)
}

type Rule interface {
	Name() string
	Check(ctx context.Context, in *Input) []Diagnostic
}

func DefaultRules() []Rule {
	return []Rule{
		&SyntaxRule{},
		&ReferencesRule{},
		&PortsRule{},
		&EnvironmentRule{},
		&ImagesRule{},
		&BuildRule{},
		&DependenciesRule{},
		&ContainersRule{},
	}
}

type Validator struct {
	rules []Rule
	limit int
}

func New(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules, limit: 4}
}

// Run applies every rule concurrently and returns the merged, ordered report.
func (v *Validator) Run(ctx context.Context, in *Input) (*Report, error) {
	results := make([][]Diagnostic, len(v.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.limit)
	for i, rule := range v.rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			diags := rule.Check(gctx, in)
			for j := range diags {
				diags[j].Rule = rule.Name()
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Diagnostics: make([]Diagnostic, 0)}
	if in.Result != nil {
		report.Source = in.Result.Path
	}
	for _, diags := range results {
		report.Diagnostics = append(report.Diagnostics, diags...)
	}
	report.sort()
	return report, nil
}

func path(elems ...string) string {
	return strings.Join(elems, ".")
}

func newDiag(sev Severity, line int, p, message string) Diagnostic {
	return Diagnostic{Severity: sev, Path: p, Line: line, Message: message}
}
