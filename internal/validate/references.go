package validate

import (
	"context"
	"fmt"
	"sort"
)

// defaultNetwork is created by the runtime for services that declare no
// networks, so it never needs a top-level declaration.
const defaultNetwork = "default"

// ReferencesRule checks that every network, named volume and dependency a
// service references is declared, and flags declarations nothing uses.
type ReferencesRule struct{}

func (r *ReferencesRule) Name() string { return "references" }

func (r *ReferencesRule) Check(ctx context.Context, in *Input) []Diagnostic {
	if in.Result == nil || in.Result.Project == nil {
		return nil
	}
	doc := in.Result.Document
	project := in.Result.Project

	declaredNetworks := keySet(doc.Keys("networks"))
	declaredNetworks[defaultNetwork] = true
	declaredVolumes := keySet(doc.Keys("volumes"))
	services := keySet(project.ServiceNames())

	usedNetworks := make(map[string]bool)
	usedVolumes := make(map[string]bool)

	var diags []Diagnostic
	for _, s := range project.Services {
		for _, n := range s.Networks {
			usedNetworks[n] = true
			if !declaredNetworks[n] {
				diags = append(diags, newDiag(SeverityError, in.line("services", s.Name, "networks"),
					path("services", s.Name, "networks"),
					fmt.Sprintf("network %q is not declared under top-level networks", n)))
			}
		}

		for _, v := range s.NamedVolumes() {
			usedVolumes[v] = true
			if !declaredVolumes[v] {
				diags = append(diags, newDiag(SeverityError, in.line("services", s.Name, "volumes"),
					path("services", s.Name, "volumes"),
					fmt.Sprintf("volume %q is not declared under top-level volumes", v)))
			}
		}

		for _, dep := range s.DependsOn {
			if !services[dep] {
				diags = append(diags, newDiag(SeverityError, in.line("services", s.Name, "depends_on"),
					path("services", s.Name, "depends_on"),
					fmt.Sprintf("depends on undefined service %q", dep)))
			}
		}
	}

	for _, n := range doc.Keys("networks") {
		if !usedNetworks[n] {
			diags = append(diags, newDiag(SeverityWarning, in.line("networks", n), path("networks", n),
				"network is declared but no service attaches to it"))
		}
	}
	for _, v := range doc.Keys("volumes") {
		if !usedVolumes[v] {
			diags = append(diags, newDiag(SeverityWarning, in.line("volumes", v), path("volumes", v),
				"volume is declared but no service mounts it"))
		}
	}

	return diags
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
