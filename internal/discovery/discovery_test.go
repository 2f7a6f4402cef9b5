package discovery_test

import (
	"errors"
	"testing"

	"github.com/losb/stackcheck/internal/discovery"
	"github.com/losb/stackcheck/internal/discovery/detectors"
	"github.com/losb/stackcheck/internal/filesystems"
)

func TestDetectors(t *testing.T) {
	tests := []struct {
		detector discovery.Detector
		filename string
		want     bool
	}{
		{&detectors.DockerCompose{}, "docker-compose.yml", true},
		{&detectors.DockerCompose{}, "compose.yaml", true},
		{&detectors.DockerCompose{}, "docker-compose.override.yml", true},
		{&detectors.DockerCompose{}, "Docker-Compose.prod.YAML", true},
		{&detectors.DockerCompose{}, "compose.json", false},
		{&detectors.DockerCompose{}, "decompose.yml", false},
		{&detectors.Dockerfile{}, "Dockerfile", true},
		{&detectors.Dockerfile{}, "Dockerfile.dev", true},
		{&detectors.Dockerfile{}, "api.dockerfile", true},
		{&detectors.Dockerfile{}, "dockerignore", false},
		{&detectors.Dotenv{}, ".env", true},
		{&detectors.Dotenv{}, ".env.example", true},
		{&detectors.Dotenv{}, "prod.env", true},
		{&detectors.Dotenv{}, "environment.go", false},
	}

	for _, tt := range tests {
		if got := tt.detector.Detect(tt.filename); got != tt.want {
			t.Errorf("%s.Detect(%q) = %v, want %v", tt.detector.Name(), tt.filename, got, tt.want)
		}
	}
}

func TestDiscoverConfigs(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("docker-compose.yml", []byte("services: {}\n"))
	mfs.AddFile(".env.example", []byte("A=\n"))
	mfs.AddFile("app/Dockerfile", []byte("FROM alpine:3.20\n"))
	mfs.AddFile("app/main.go", []byte("package main\n"))
	mfs.AddFile("node_modules/pkg/docker-compose.yml", []byte("services: {}\n"))
	mfs.AddFile(".git/compose.yaml", []byte("services: {}\n"))

	scanner := discovery.NewScannerWithDetectors(discovery.DefaultDetectors())
	configs, err := scanner.DiscoverConfigs(mfs, ".")
	if err != nil {
		t.Fatalf("DiscoverConfigs: %v", err)
	}

	got := make(map[string]string)
	for _, c := range configs {
		got[c.Path] = c.Type
	}

	want := map[string]string{
		"docker-compose.yml": "docker-compose",
		".env.example":       "dotenv",
		"app/Dockerfile":     "dockerfile",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for path, typ := range want {
		if got[path] != typ {
			t.Errorf("config %s: got type %q, want %q", path, got[path], typ)
		}
	}
}

func TestFindManifest(t *testing.T) {
	mfs := filesystems.NewMemoryFS()
	mfs.AddFile("svc/docker-compose.yml", []byte("services: {}\n"))
	mfs.AddFile("svc/compose.yaml", []byte("services: {}\n"))
	mfs.AddFile("other/README.md", []byte("#\n"))

	got, err := discovery.FindManifest(mfs, "svc")
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if got != "svc/compose.yaml" {
		t.Errorf("FindManifest = %q, want svc/compose.yaml", got)
	}

	_, err = discovery.FindManifest(mfs, "other")
	if !errors.Is(err, discovery.ErrNoManifest) {
		t.Errorf("expected ErrNoManifest, got %v", err)
	}
}
