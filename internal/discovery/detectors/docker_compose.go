package detectors

import (
	"strings"
)

type DockerCompose struct{}

func (d *DockerCompose) Name() string { return "docker-compose" }

// Detect matches compose.y(a)ml, docker-compose.y(a)ml and their
// override variants such as docker-compose.override.yml.
func (d *DockerCompose) Detect(filename string) bool {
	filename = strings.ToLower(filename)

	var stem string
	switch {
	case strings.HasSuffix(filename, ".yml"):
		stem = strings.TrimSuffix(filename, ".yml")
	case strings.HasSuffix(filename, ".yaml"):
		stem = strings.TrimSuffix(filename, ".yaml")
	default:
		return false
	}

	for _, base := range []string{"docker-compose", "compose"} {
		if stem == base || strings.HasPrefix(stem, base+".") {
			return true
		}
	}
	return false
}
