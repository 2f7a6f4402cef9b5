package export

import (
	"encoding/json"

	"github.com/losb/stackcheck/internal/manifest"
)

type JSONExporter struct{}

func (e *JSONExporter) Name() string {
	return "json"
}

func (e *JSONExporter) Export(project *manifest.Project) ([]byte, error) {
	out, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func NewJSONExporter() Exporter {
	return &JSONExporter{}
}
