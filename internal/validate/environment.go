package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/losb/stackcheck/internal/environment/types"
	"github.com/losb/stackcheck/internal/filesystems"
)

// EnvironmentRule checks that required deploy-time variables are documented
// in the env example and that referenced env files exist.
type EnvironmentRule struct{}

func (r *EnvironmentRule) Name() string { return "environment" }

func (r *EnvironmentRule) Check(ctx context.Context, in *Input) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, r.checkEnvFiles(in)...)

	reqs := in.Requirements
	if reqs == nil {
		return diags
	}

	if !reqs.ExampleFound {
		var names []string
		for _, item := range reqs.Items {
			names = append(names, item.Name)
		}
		msg := fmt.Sprintf("env example %s not found", reqs.Example)
		if len(names) > 0 {
			msg += "; undocumented: " + strings.Join(names, ", ")
		}
		return append(diags, newDiag(SeverityWarning, 0, "", msg))
	}

	for _, item := range reqs.Undocumented() {
		sev := SeverityError
		if item.Optional {
			sev = SeverityWarning
		}
		line, p := in.envLine(item.Services, item.Name)
		diags = append(diags, newDiag(sev, line, p,
			fmt.Sprintf("%s is required (%s) but not documented in %s", item.Name, strings.Join(item.Sources, ", "), reqs.Example)))
	}

	for _, name := range sortedKeys(reqs.ExampleValues) {
		value := reqs.ExampleValues[name]
		if _, sensitive := types.ClassifyEnvVar(name, value); sensitive && !types.IsPlaceholder(value) {
			diags = append(diags, newDiag(SeverityWarning, 0, "",
				fmt.Sprintf("%s carries a real-looking value for sensitive %s; use a placeholder", reqs.Example, name)))
		}
	}

	return diags
}

func (r *EnvironmentRule) checkEnvFiles(in *Input) []Diagnostic {
	if in.Result == nil || in.Result.Project == nil {
		return nil
	}

	var diags []Diagnostic
	for _, s := range in.Result.Project.Services {
		for _, f := range s.EnvFiles {
			if filesystems.Exists(in.FS, in.resolve(f)) {
				continue
			}
			diags = append(diags, newDiag(SeverityWarning, in.line("services", s.Name, "env_file"),
				path("services", s.Name, "env_file"),
				fmt.Sprintf("env file %s does not exist; it must be created before deploying", f)))
		}
	}
	return diags
}

// envLine finds where name is set in a service environment, preferring the
// listed services and falling back to any service in the document.
func (in *Input) envLine(services []string, name string) (int, string) {
	candidates := services
	if doc := in.doc(); doc != nil {
		candidates = append(append([]string{}, services...), doc.Keys("services")...)
	}
	for _, s := range candidates {
		if l := in.line("services", s, "environment", name); l > 0 {
			return l, path("services", s, "environment", name)
		}
	}
	return 0, ""
}

func sortedKeys(m map[string]string) []string {
	set := make(map[string]bool, len(m))
	for k := range m {
		set[k] = true
	}
	return sortedSet(set)
}
