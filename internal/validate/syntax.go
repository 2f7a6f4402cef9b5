package validate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var topLevelKeys = map[string]bool{
	"version": true, "services": true, "networks": true, "volumes": true,
	"name": true, "configs": true, "secrets": true, "include": true,
}

var yamlErrLine = regexp.MustCompile(`line (\d+)`)

// SyntaxRule checks that the manifest parses and uses known top-level keys.
type SyntaxRule struct{}

func (r *SyntaxRule) Name() string { return "syntax" }

func (r *SyntaxRule) Check(ctx context.Context, in *Input) []Diagnostic {
	if in.Result == nil {
		return []Diagnostic{newDiag(SeverityError, 0, "", "no manifest loaded")}
	}
	if err := in.Result.DocErr; err != nil {
		return []Diagnostic{newDiag(SeverityError, errorLine(err), "", fmt.Sprintf("invalid YAML: %v", err))}
	}

	doc := in.Result.Document
	if doc.Empty() {
		return []Diagnostic{newDiag(SeverityError, 0, "", "manifest is empty")}
	}

	var diags []Diagnostic
	for _, key := range doc.TopLevelKeys() {
		if !topLevelKeys[key] && !strings.HasPrefix(key, "x-") {
			diags = append(diags, newDiag(SeverityError, doc.Line(key), key,
				fmt.Sprintf("unknown top-level key %q", key)))
		}
	}

	if !doc.Has("services") {
		diags = append(diags, newDiag(SeverityError, 0, "services", "no services defined"))
	}

	if doc.Has("version") {
		diags = append(diags, newDiag(SeverityInfo, doc.Line("version"), "version",
			"the version attribute is obsolete and ignored by the runtime"))
	}

	if err := in.Result.LoadErr; err != nil {
		diags = append(diags, newDiag(SeverityError, errorLine(err), "", fmt.Sprintf("compose rejected the manifest: %v", err)))
	}

	return diags
}

func errorLine(err error) int {
	m := yamlErrLine.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
