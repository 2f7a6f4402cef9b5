package validate

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// BuildRule checks the local build inputs of services built from source.
// Missing inputs are warnings: the build context is often provided by the
// deploy checkout rather than this repository.
type BuildRule struct{}

func (r *BuildRule) Name() string { return "build" }

func (r *BuildRule) Check(ctx context.Context, in *Input) []Diagnostic {
	if in.Result == nil || in.Result.Project == nil {
		return nil
	}

	var diags []Diagnostic
	for _, s := range in.Result.Project.Services {
		if s.Build == nil {
			continue
		}
		if ctx.Err() != nil {
			return diags
		}

		buildPath := path("services", s.Name, "build")
		line := in.line("services", s.Name, "build")

		if strings.Contains(s.Build.Context, "://") || strings.HasPrefix(s.Build.Context, "git@") {
			diags = append(diags, newDiag(SeverityInfo, line, buildPath,
				fmt.Sprintf("remote build context %s is not checked", s.Build.Context)))
			continue
		}

		contextDir := in.resolve(s.Build.Context)
		if !filesystems.IsDir(in.FS, contextDir) {
			diags = append(diags, newDiag(SeverityWarning, line, buildPath,
				fmt.Sprintf("build context %s does not exist", s.Build.Context)))
			continue
		}

		dockerfile := s.Build.Dockerfile
		if dockerfile == "" {
			dockerfile = "Dockerfile"
		}
		dockerfilePath := dockerfile
		if !in.FS.IsAbs(dockerfile) {
			dockerfilePath = in.FS.Join(contextDir, dockerfile)
		}

		dfLine := in.line("services", s.Name, "build", "dockerfile")
		if dfLine == 0 {
			dfLine = line
		}

		content, err := in.FS.ReadFile(dockerfilePath)
		if err != nil {
			msg := fmt.Sprintf("dockerfile %s not found in build context", dockerfile)
			dir := in.FS.Dir(dockerfilePath)
			if found, _ := filesystems.FindFile(in.FS, dir, in.FS.Base(dockerfilePath), in.FS.ReadDir(dir)); found != "" {
				msg += fmt.Sprintf("; found %s, names are case-sensitive", in.FS.Base(found))
			}
			diags = append(diags, newDiag(SeverityWarning, dfLine, buildPath, msg))
			continue
		}

		if d, ok := checkDockerfile(content); !ok {
			d.Line, d.Path = dfLine, buildPath
			d.Message = fmt.Sprintf("%s: %s", dockerfile, d.Message)
			diags = append(diags, d)
		}
	}
	return diags
}

// checkDockerfile parses content and requires FROM as the first instruction
// other than ARG.
func checkDockerfile(content []byte) (Diagnostic, bool) {
	result, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return newDiag(SeverityError, 0, "", fmt.Sprintf("cannot parse: %v", err)), false
	}

	for _, child := range result.AST.Children {
		switch strings.ToLower(child.Value) {
		case "arg":
			continue
		case "from":
			return Diagnostic{}, true
		default:
			return newDiag(SeverityError, 0, "",
				fmt.Sprintf("line %d: first instruction must be FROM, found %s", child.StartLine, strings.ToUpper(child.Value))), false
		}
	}
	return newDiag(SeverityError, 0, "", "no FROM instruction"), false
}
