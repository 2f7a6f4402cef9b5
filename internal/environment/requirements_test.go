package environment_test

import (
	"context"
	"strings"
	"testing"

	"github.com/losb/stackcheck/internal/environment"
	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/losb/stackcheck/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (*filesystems.MemoryFS, *manifest.Project) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("docker-compose.yml", []byte(composeContent))
	mfs.AddFile(".env.example", []byte("POSTGRES_USER=\nPOSTGRES_PASSWORD=\nPOSTGRES_NAME=losb\n"))
	mfs.AddFile(".env", []byte("SENTRY_DSN=https://key@sentry.example/1\n"))
	mfs.AddFile("app/Dockerfile", []byte("FROM python:3.12-slim\nENV DEBUG=0\n"))
	mfs.AddFile("app/app/settings.py", []byte(`import os
SECRET_KEY = os.environ.get('SECRET_KEY')
DEBUG = os.getenv("DEBUG", "0") == "1"
NAME = os.environ["POSTGRES_NAME"]
MODULE = os.getenv("DJANGO_SETTINGS_MODULE")
`))
	mfs.AddFile("app/node_modules/lib/index.js", []byte("process.env.IGNORED_DEP"))

	p := manifest.NewProject("losb")
	app := manifest.NewService("app")
	app.Build = &manifest.Build{Context: "./app", Dockerfile: "Dockerfile"}
	app.EnvFiles = []string{".env"}
	app.Environment["DJANGO_SETTINGS_MODULE"] = manifest.EnvValue{Value: "app.settings", Set: true}
	app.Environment["SENTRY_DSN"] = manifest.EnvValue{}
	p.AddService(app)
	db := manifest.NewService("db")
	db.Image = "postgres:16"
	p.AddService(db)
	return mfs, p
}

func TestCollector_Collect(t *testing.T) {
	mfs, project := fixture()
	collector := environment.NewCollector(mfs, environment.NewExtractor(nil), environment.Options{
		Required:    environment.DefaultRequired,
		ScanSources: true,
	})

	reqs, err := collector.Collect(context.Background(), "docker-compose.yml", project)
	require.NoError(t, err)
	assert.True(t, reqs.ExampleFound)
	assert.Equal(t, ".env.example", reqs.Example)

	user, ok := reqs.Get("POSTGRES_USER")
	require.True(t, ok)
	assert.False(t, user.Optional)
	assert.True(t, user.Documented)
	assert.Contains(t, user.Sources, "config:required_env")

	name, ok := reqs.Get("POSTGRES_NAME")
	require.True(t, ok)
	assert.False(t, name.Optional, "configured names stay required even with a default")
	assert.Equal(t, "losb", name.Default)

	pw, ok := reqs.Get("POSTGRES_PASSWORD")
	require.True(t, ok)
	assert.True(t, pw.Sensitive)

	dsn, ok := reqs.Get("SENTRY_DSN")
	require.True(t, ok)
	assert.False(t, dsn.Documented)
	assert.True(t, dsn.Provided)
	assert.Equal(t, []string{"app"}, dsn.Services)

	secret, ok := reqs.Get("SECRET_KEY")
	require.True(t, ok)
	assert.True(t, secret.Optional)
	assert.Equal(t, []string{"app"}, secret.Services)

	_, ok = reqs.Get("DEBUG")
	assert.False(t, ok, "DEBUG has a Dockerfile default")
	_, ok = reqs.Get("DJANGO_SETTINGS_MODULE")
	assert.False(t, ok, "set literally in the manifest")
	_, ok = reqs.Get("IGNORED_DEP")
	assert.False(t, ok, "node_modules is not scanned")

	var undocumented []string
	for _, r := range reqs.Undocumented() {
		undocumented = append(undocumented, r.Name)
	}
	assert.Equal(t, []string{"SECRET_KEY", "SENTRY_DSN"}, undocumented)
}

func TestCollector_MissingExample(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("deploy/docker-compose.yml", []byte(composeContent))

	collector := environment.NewCollector(mfs, environment.NewExtractor(nil), environment.Options{})
	reqs, err := collector.Collect(context.Background(), "deploy/docker-compose.yml", nil)
	require.NoError(t, err)

	assert.False(t, reqs.ExampleFound)
	assert.Equal(t, "deploy/.env.example", reqs.Example)
	assert.Len(t, reqs.Undocumented(), len(reqs.Items))

	name, ok := reqs.Get("POSTGRES_NAME")
	require.True(t, ok)
	assert.True(t, name.Optional)
}

func TestCollector_MissingManifest(t *testing.T) {
	collector := environment.NewCollector(filesystems.NewMemoryFS(), environment.NewExtractor(nil), environment.Options{})
	_, err := collector.Collect(context.Background(), "docker-compose.yml", nil)
	require.Error(t, err)
}

func TestTemplate(t *testing.T) {
	mfs, project := fixture()
	collector := environment.NewCollector(mfs, environment.NewExtractor(nil), environment.Options{Required: environment.DefaultRequired})

	reqs, err := collector.Collect(context.Background(), "docker-compose.yml", project)
	require.NoError(t, err)

	out, err := environment.Template(reqs)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines, `POSTGRES_NAME="losb"`)
	assert.Contains(t, lines, `POSTGRES_PASSWORD=""`)
	assert.Contains(t, lines, `SENTRY_DSN=""`)
}

func TestCollector_ManifestNameWithoutCompose(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("stack.yml", []byte(`services:
  app:
    image: nginx:1.27
    environment:
      X: ${SECRET_TOKEN}
`))
	mfs.AddFile(".env.example", []byte("POSTGRES_USER=\n"))

	collector := environment.NewCollector(mfs, environment.NewExtractor(nil), environment.Options{})
	reqs, err := collector.Collect(context.Background(), "stack.yml", nil)
	require.NoError(t, err)

	token, ok := reqs.Get("SECRET_TOKEN")
	require.True(t, ok)
	assert.False(t, token.Optional)
	assert.False(t, token.Documented)
	assert.True(t, token.Sensitive)
}

func TestCollector_DotEnvFiles(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("docker-compose.yml", []byte("services:\n  app:\n    build: ./app\n"))
	mfs.AddFile("config/app.conf", []byte("WORKERS=4\n"))
	mfs.AddFile("app/.env", []byte("CACHE_URL=redis://cache:6379\n"))
	mfs.AddFile("app/.env.example", []byte("FEATURE_FLAGS=\n"))
	mfs.AddFile("app/main.py", []byte(`import os
CACHE = os.environ["CACHE_URL"]
FLAGS = os.getenv("FEATURE_FLAGS")
WORKERS = os.getenv("WORKERS")
`))

	p := manifest.NewProject("dotenv")
	app := manifest.NewService("app")
	app.Build = &manifest.Build{Context: "./app"}
	app.EnvFiles = []string{"config/app.conf"}
	p.AddService(app)

	collector := environment.NewCollector(mfs, environment.NewExtractor(nil), environment.Options{ScanSources: true})
	reqs, err := collector.Collect(context.Background(), "docker-compose.yml", p)
	require.NoError(t, err)

	_, ok := reqs.Get("CACHE_URL")
	assert.False(t, ok, "set by the .env inside the build context")

	flags, ok := reqs.Get("FEATURE_FLAGS")
	require.True(t, ok, "example files do not supply values")
	assert.True(t, flags.Optional)

	workers, ok := reqs.Get("WORKERS")
	require.True(t, ok)
	assert.True(t, workers.Provided, "env_file names need not look like .env")
}
