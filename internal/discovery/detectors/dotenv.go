package detectors

import (
	"strings"
)

// Dotenv matches .env and its variants (.env.example, .env.production).
type Dotenv struct{}

func (d *Dotenv) Name() string { return "dotenv" }

func (d *Dotenv) Detect(filename string) bool {
	filename = strings.ToLower(filename)
	return filename == ".env" || strings.HasPrefix(filename, ".env.") || strings.HasSuffix(filename, ".env")
}
