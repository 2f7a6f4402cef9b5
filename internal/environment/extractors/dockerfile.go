package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/losb/stackcheck/internal/environment/types"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// DockerfileExtractor reports ENV instructions. A variable set by the image
// has a default and does not have to be supplied at deploy time.
type DockerfileExtractor struct{}

func NewDockerfileExtractor() *DockerfileExtractor {
	return &DockerfileExtractor{}
}

func (d *DockerfileExtractor) CanHandle(filename string) bool {
	name := strings.ToLower(filename)
	return strings.Contains(name, "dockerfile")
}

func (d *DockerfileExtractor) Confidence() int {
	return 60
}

func (d *DockerfileExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	ast, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var results []types.EnvResult
	for _, child := range ast.AST.Children {
		if strings.EqualFold(child.Value, "ENV") {
			results = append(results, d.parseEnvNode(child, filename)...)
		}
	}

	return results, nil
}

func (d *DockerfileExtractor) parseEnvNode(node *parser.Node, dockerfilePath string) []types.EnvResult {
	var args []string
	for n := node.Next; n != nil; n = n.Next {
		args = append(args, n.Value)
	}
	if len(args) == 0 {
		return nil
	}

	// buildkit normalises both ENV forms into name/value pairs; newer
	// releases append a separator node to each pair.
	stride := 2
	if len(args)%3 == 0 && (args[2] == "=" || args[2] == " ") {
		stride = 3
	}

	var results []types.EnvResult
	for i := 0; i+1 < len(args); i += stride {
		varName, value := args[i], args[i+1]
		if types.ShouldIgnore(varName) {
			continue
		}

		envType, sensitive := types.ClassifyEnvVar(varName, value)
		results = append(results, types.EnvResult{
			VarName:    varName,
			Value:      value,
			HasDefault: true,
			Origin:     types.OriginDockerfile,
			Type:       envType,
			Sensitive:  sensitive,
			Source:     fmt.Sprintf("dockerfile:%s", dockerfilePath),
			Confidence: d.Confidence(),
		})
	}

	return results
}
