package detectors

import (
	"strings"
)

type Dockerfile struct{}

func (d *Dockerfile) Name() string { return "dockerfile" }

func (d *Dockerfile) Detect(filename string) bool {
	filename = strings.ToLower(filename)
	return filename == "dockerfile" || strings.HasPrefix(filename, "dockerfile.") || strings.HasSuffix(filename, ".dockerfile")
}
