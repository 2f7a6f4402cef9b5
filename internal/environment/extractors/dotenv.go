package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/losb/stackcheck/internal/environment/types"
)

// ExampleConfidence is reported for example and sample files, whose values
// are placeholders.
const ExampleConfidence = 30

type DotEnvExtractor struct{}

func NewDotEnvExtractor() *DotEnvExtractor {
	return &DotEnvExtractor{}
}

func (d *DotEnvExtractor) CanHandle(filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	return strings.HasPrefix(base, ".env") || strings.HasSuffix(base, ".env")
}

func (d *DotEnvExtractor) Confidence() int {
	return 85 // High confidence for explicit env files
}

func (d *DotEnvExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	env, err := godotenv.Unmarshal(string(content))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var results []types.EnvResult
	confidence := d.getFileConfidence(filepath.Base(filename))

	for _, key := range keys {
		value := env[key]
		envType, sensitive := types.ClassifyEnvVar(key, value)
		results = append(results, types.EnvResult{
			VarName:    key,
			Value:      value,
			HasDefault: value != "",
			Origin:     types.OriginDotEnv,
			Type:       envType,
			Sensitive:  sensitive,
			Source:     fmt.Sprintf("dotenv:%s", filename),
			Confidence: confidence,
		})
	}

	return results, nil
}

func (d *DotEnvExtractor) getFileConfidence(filename string) int {
	switch {
	case filename == ".env":
		return 85
	case strings.Contains(filename, "production"):
		return 90
	case strings.Contains(filename, "example"), strings.Contains(filename, "sample"):
		return ExampleConfidence
	default:
		return 75
	}
}
