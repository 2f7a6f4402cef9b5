package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/losb/stackcheck/internal/environment/types"
)

// LibraryCallExtractor finds environment reads in application source. These
// are the variables the app container needs from its env_file.
type LibraryCallExtractor struct{}

func NewLibraryCallExtractor() *LibraryCallExtractor {
	return &LibraryCallExtractor{}
}

var sourceExts = []string{
	".py", ".js", ".ts", ".mjs", ".rb", ".go", ".sh",
}

func (l *LibraryCallExtractor) CanHandle(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))

	for _, sourceExt := range sourceExts {
		if ext == sourceExt {
			return true
		}
	}
	return false
}

func (l *LibraryCallExtractor) Confidence() int {
	return 50 // usage patterns, not declarations
}

var libraryCallPatterns = []*regexp.Regexp{
	// os.getenv('VAR') / os.getenv("VAR", default) (Python)
	regexp.MustCompile(`os\.getenv\(\s*['"]([A-Z_][A-Z0-9_]*)['"]`),

	// os.environ['VAR'] / os.environ.get('VAR') / os.environ.setdefault('VAR') (Python)
	regexp.MustCompile(`os\.environ(?:\.get|\.setdefault)?[\[(]\s*['"]([A-Z_][A-Z0-9_]*)['"]`),

	// env('VAR') / env.str('VAR') (django-environ), config('VAR') (python-decouple)
	regexp.MustCompile(`\b(?:env(?:\.\w+)?|config)\(\s*['"]([A-Z_][A-Z0-9_]*)['"]`),

	// process.env.VAR (JavaScript/TypeScript)
	regexp.MustCompile(`process\.env\.([A-Z_][A-Z0-9_]*)`),

	// ENV['VAR'] / ENV.fetch('VAR') (Ruby)
	regexp.MustCompile(`ENV(?:\.fetch\(|\[)\s*['"]([A-Z_][A-Z0-9_]*)['"]`),

	// os.Getenv("VAR") / os.LookupEnv("VAR") (Go)
	regexp.MustCompile(`os\.(?:Getenv|LookupEnv)\("([A-Z_][A-Z0-9_]*)"\)`),

	// ${VAR:?message} in shell entrypoints
	regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):\?`),
}

func (l *LibraryCallExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	var results []types.EnvResult
	if isTestFile(filename) {
		return results, nil
	}

	contentStr := string(content)
	found := make(map[string]bool)

	for _, pattern := range libraryCallPatterns {
		for _, match := range pattern.FindAllStringSubmatch(contentStr, -1) {
			if len(match) < 2 {
				continue
			}

			varName := match[1]
			if found[varName] || types.ShouldIgnore(varName) {
				continue
			}
			found[varName] = true

			envType, sensitive := types.ClassifyEnvVar(varName, "")
			results = append(results, types.EnvResult{
				VarName:    varName,
				Origin:     types.OriginUsage,
				Type:       envType,
				Sensitive:  sensitive,
				Source:     fmt.Sprintf("usage:%s", filename),
				Confidence: l.Confidence(),
			})
		}
	}

	return results, nil
}

func isTestFile(filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	dir := strings.ToLower(filepath.ToSlash(filepath.Dir(filename)))
	return strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_test.py") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasSuffix(dir, "/tests") || dir == "tests"
}
