package validate

import (
	"context"
	"fmt"
	"regexp"
)

var containerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]+$`)

// ContainersRule checks container_name values are valid and unique.
type ContainersRule struct{}

func (r *ContainersRule) Name() string { return "containers" }

func (r *ContainersRule) Check(ctx context.Context, in *Input) []Diagnostic {
	if in.Result == nil || in.Result.Project == nil {
		return nil
	}

	var diags []Diagnostic
	owners := make(map[string]string)
	for _, s := range in.Result.Project.Services {
		name := s.ContainerName
		if name == "" {
			continue
		}
		p := path("services", s.Name, "container_name")
		line := in.line("services", s.Name, "container_name")

		if !containerNamePattern.MatchString(name) {
			diags = append(diags, newDiag(SeverityError, line, p,
				fmt.Sprintf("invalid container name %q", name)))
			continue
		}
		if owner, taken := owners[name]; taken {
			diags = append(diags, newDiag(SeverityError, line, p,
				fmt.Sprintf("container name %q is already used by service %q", name, owner)))
			continue
		}
		owners[name] = s.Name
	}
	return diags
}
