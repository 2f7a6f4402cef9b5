package deploy_test

import (
	"context"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/losb/stackcheck/deploy"
	"github.com/losb/stackcheck/internal/environment"
	"github.com/losb/stackcheck/internal/parser"
	"github.com/losb/stackcheck/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestParses(t *testing.T) {
	doc, err := parser.ParseDocument(deploy.ManifestName, deploy.Manifest())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app", "db"}, doc.Keys("services"))
}

func TestManifestReferencesAreDeclared(t *testing.T) {
	doc, err := parser.ParseDocument(deploy.ManifestName, deploy.Manifest())
	require.NoError(t, err)

	networks := doc.Keys("networks")
	volumes := doc.Keys("volumes")
	for _, service := range doc.Keys("services") {
		for _, n := range doc.Scalars("services", service, "networks") {
			assert.Contains(t, networks, n.Value, "service %s", service)
		}
		for _, v := range doc.Scalars("services", service, "volumes") {
			source, _, _ := strings.Cut(v.Value, ":")
			assert.Contains(t, volumes, source, "service %s", service)
		}
	}
}

func TestEnvExampleDocumentsRequiredVariables(t *testing.T) {
	values, err := godotenv.Unmarshal(string(deploy.EnvExample()))
	require.NoError(t, err)

	for _, name := range environment.DefaultRequired {
		value, ok := values[name]
		assert.True(t, ok, "%s missing from %s", name, deploy.EnvExampleName)
		assert.Empty(t, value, "%s should not carry a value", name)
	}
}

func TestManifestValidates(t *testing.T) {
	mfs := deploy.Files()
	ctx := context.Background()

	result, err := parser.NewDockerComposeParser(mfs, parser.Options{}, nil).Parse(ctx, deploy.ManifestName)
	require.NoError(t, err)

	reqs, err := environment.NewCollector(mfs, environment.NewExtractor(nil), environment.Options{
		Required: environment.DefaultRequired,
	}).Collect(ctx, deploy.ManifestName, result.Project)
	require.NoError(t, err)

	report, err := validate.New().Run(ctx, &validate.Input{FS: mfs, Result: result, Requirements: reqs})
	require.NoError(t, err)

	for _, d := range report.Diagnostics {
		if d.Rule == "ports" {
			t.Errorf("unexpected port diagnostic: %s", d)
		}
	}
	assert.False(t, report.HasErrors(), "%v", report.Diagnostics)
}
