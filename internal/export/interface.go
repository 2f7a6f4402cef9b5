package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/losb/stackcheck/internal/manifest"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Exporter defines the interface for exporting projects to various formats
type Exporter interface {
	// Export converts a project to the target format
	Export(project *manifest.Project) ([]byte, error)

	// Name returns the exporter name (e.g., "json", "yaml", "toml")
	Name() string
}

var registry = map[string]func() Exporter{
	"json": NewJSONExporter,
	"yaml": NewYAMLExporter,
	"yml":  NewYAMLExporter,
	"toml": NewTOMLExporter,
}

// ForFormat returns the exporter registered under name.
func ForFormat(name string) (Exporter, error) {
	newExporter, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return newExporter(), nil
}

// Formats lists the canonical format names.
func Formats() []string {
	formats := make([]string, 0, len(registry))
	for name, newExporter := range registry {
		if newExporter().Name() == name {
			formats = append(formats, name)
		}
	}
	sort.Strings(formats)
	return formats
}
