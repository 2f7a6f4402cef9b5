package validate

import (
	"fmt"
	"sort"
	"strings"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is one finding about a manifest. Path addresses the offending
// node in dotted form (services.app.ports.0); Line is 0 when unknown.
type Diagnostic struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Severity Severity `json:"severity" yaml:"severity"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&b, "%d: ", d.Line)
	}
	fmt.Fprintf(&b, "%s [%s]", d.Severity, d.Rule)
	if d.Path != "" {
		fmt.Fprintf(&b, " %s:", d.Path)
	}
	fmt.Fprintf(&b, " %s", d.Message)
	return b.String()
}

// Report collects the diagnostics for one manifest.
type Report struct {
	Source      string       `json:"source" yaml:"source"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

func (r *Report) Count(sev Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Failed reports whether the manifest should be rejected. Strict mode
// rejects warnings too.
func (r *Report) Failed(strict bool) bool {
	if r.HasErrors() {
		return true
	}
	return strict && r.Count(SeverityWarning) > 0
}

// ByRule returns the diagnostics produced by rule.
func (r *Report) ByRule(rule string) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Rule == rule {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) sort() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Message < b.Message
	})
}
