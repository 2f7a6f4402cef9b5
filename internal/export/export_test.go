package export_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/losb/stackcheck/internal/export"
	"github.com/losb/stackcheck/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleProject() *manifest.Project {
	project := manifest.NewProject("losb")
	project.Version = "3.9"

	db := manifest.NewService("db")
	db.Image = "postgres:16"
	db.Ports = []manifest.PortMapping{{Published: "5432", Target: 5432, Protocol: "tcp"}}
	db.Networks = []string{"backend"}
	db.Environment = map[string]manifest.EnvValue{
		"POSTGRES_PASSWORD": {Value: "", Set: false, Sensitive: true},
	}
	project.AddService(db)

	app := manifest.NewService("app")
	app.Build = &manifest.Build{Context: "./app", Dockerfile: "Dockerfile"}
	app.DependsOn = []string{"db"}
	app.Networks = []string{"backend"}
	project.AddService(app)

	project.Networks = []manifest.Network{{Name: "backend", Driver: "bridge"}}
	project.Volumes = []manifest.Volume{{Name: "pgdata"}}
	project.Sort()
	return project
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"json", "yaml", "yml", "TOML"} {
		exp, err := export.ForFormat(name)
		require.NoError(t, err, name)
		assert.NotNil(t, exp)
	}

	_, err := export.ForFormat("xml")
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))
	assert.Equal(t, []string{"json", "toml", "yaml"}, export.Formats())
}

func TestJSONExporter(t *testing.T) {
	out, err := export.NewJSONExporter().Export(sampleProject())
	require.NoError(t, err)

	var decoded struct {
		Name     string `json:"name"`
		Services []struct {
			Name      string   `json:"name"`
			DependsOn []string `json:"dependsOn"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "losb", decoded.Name)
	require.Len(t, decoded.Services, 2)
	assert.Equal(t, "app", decoded.Services[0].Name)
	assert.Equal(t, []string{"db"}, decoded.Services[0].DependsOn)
}

func TestYAMLExporter(t *testing.T) {
	out, err := export.NewYAMLExporter().Export(sampleProject())
	require.NoError(t, err)

	var decoded manifest.Project
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "3.9", decoded.Version)
	assert.Equal(t, []string{"app", "db"}, decoded.ServiceNames())
	assert.Equal(t, &manifest.Build{Context: "./app", Dockerfile: "Dockerfile"}, decoded.Services[0].Build)
	assert.True(t, decoded.Services[1].Environment["POSTGRES_PASSWORD"].Sensitive)
	assert.Equal(t, []manifest.Network{{Name: "backend", Driver: "bridge"}}, decoded.Networks)
}

func TestTOMLExporter(t *testing.T) {
	out, err := export.NewTOMLExporter().Export(sampleProject())
	require.NoError(t, err)

	var decoded manifest.Project
	_, err = toml.Decode(string(out), &decoded)
	require.NoError(t, err)
	assert.Equal(t, "losb", decoded.Name)
	require.Len(t, decoded.Services, 2)
	assert.Equal(t, "postgres:16", decoded.Services[1].Image)
	assert.EqualValues(t, 5432, decoded.Services[1].Ports[0].Target)
}
