package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/template"
	"github.com/losb/stackcheck/internal/environment/types"
	"gopkg.in/yaml.v3"
)

// DockerComposeExtractor reports the variables a compose file expects from
// its deploy-time environment: ${VAR} interpolations and literal
// environment entries. It reads the raw document so it still works on
// manifests compose-go would reject.
type DockerComposeExtractor struct{}

func NewDockerComposeExtractor() *DockerComposeExtractor {
	return &DockerComposeExtractor{}
}

func (d *DockerComposeExtractor) CanHandle(filename string) bool {
	name := strings.ToLower(filename)
	return strings.Contains(name, "compose") && (strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml"))
}

func (d *DockerComposeExtractor) Confidence() int {
	return 80
}

func (d *DockerComposeExtractor) Extract(ctx context.Context, filename string, content []byte) ([]types.EnvResult, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return nil, err
	}

	source := fmt.Sprintf("docker-compose:%s", filename)
	var results []types.EnvResult

	vars := template.ExtractVariables(dict, template.DefaultPattern)
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := vars[name]
		if types.ShouldIgnore(name) {
			continue
		}
		envType, sensitive := types.ClassifyEnvVar(name, v.DefaultValue)
		results = append(results, types.EnvResult{
			VarName:    name,
			Value:      v.DefaultValue,
			HasDefault: v.DefaultValue != "",
			Required:   v.Required,
			Origin:     types.OriginInterpolation,
			Type:       envType,
			Sensitive:  sensitive,
			Source:     source,
			Confidence: d.Confidence(),
		})
	}

	services, _ := dict["services"].(map[string]interface{})
	serviceNames := make([]string, 0, len(services))
	for name := range services {
		serviceNames = append(serviceNames, name)
	}
	sort.Strings(serviceNames)

	for _, serviceName := range serviceNames {
		service, _ := services[serviceName].(map[string]interface{})
		for _, entry := range environmentEntries(service["environment"]) {
			if types.ShouldIgnore(entry.key) {
				continue
			}
			envType, sensitive := types.ClassifyEnvVar(entry.key, entry.value)
			results = append(results, types.EnvResult{
				VarName:    entry.key,
				Value:      entry.value,
				HasDefault: entry.set,
				Origin:     types.OriginEnvironment,
				Type:       envType,
				Sensitive:  sensitive,
				Source:     fmt.Sprintf("%s#%s", source, serviceName),
				Confidence: d.Confidence(),
			})
		}
	}

	return results, nil
}

type envEntry struct {
	key   string
	value string
	set   bool
}

// environmentEntries accepts both the mapping and the KEY=VALUE list form.
func environmentEntries(raw interface{}) []envEntry {
	var entries []envEntry
	switch env := raw.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if env[k] == nil {
				entries = append(entries, envEntry{key: k})
				continue
			}
			entries = append(entries, envEntry{key: k, value: fmt.Sprint(env[k]), set: true})
		}
	case []interface{}:
		for _, item := range env {
			s, ok := item.(string)
			if !ok {
				continue
			}
			key, value, found := strings.Cut(s, "=")
			entries = append(entries, envEntry{key: key, value: value, set: found})
		}
	}
	return entries
}
