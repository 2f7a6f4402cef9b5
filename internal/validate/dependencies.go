package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/losb/stackcheck/internal/manifest"
)

// DependenciesRule checks that depends_on forms a valid start order.
// Undefined targets are reported by ReferencesRule.
type DependenciesRule struct{}

func (r *DependenciesRule) Name() string { return "dependencies" }

func (r *DependenciesRule) Check(ctx context.Context, in *Input) []Diagnostic {
	if in.Result == nil || in.Result.Project == nil {
		return nil
	}
	project := in.Result.Project
	known := keySet(project.ServiceNames())

	var diags []Diagnostic
	pruned := *project
	pruned.Services = make([]manifest.Service, 0, len(project.Services))
	for _, s := range project.Services {
		deps := make([]string, 0, len(s.DependsOn))
		for _, dep := range s.DependsOn {
			switch {
			case dep == s.Name:
				diags = append(diags, newDiag(SeverityError, in.line("services", s.Name, "depends_on"),
					path("services", s.Name, "depends_on"), "service depends on itself"))
			case known[dep]:
				deps = append(deps, dep)
			}
		}
		s.DependsOn = deps
		pruned.Services = append(pruned.Services, s)
	}

	if _, err := pruned.StartOrder(); err != nil {
		if errors.Is(err, manifest.ErrDependencyCycle) {
			diags = append(diags, newDiag(SeverityError, in.line("services"), "services",
				fmt.Sprintf("depends_on has a %v", err)))
		} else {
			diags = append(diags, newDiag(SeverityError, 0, "services", err.Error()))
		}
	}
	return diags
}
