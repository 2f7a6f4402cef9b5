package parser

import (
	"errors"
	"testing"
)

const sample = `version: "3.9"
services:
  app:
    ports:
      - "8080:8080"
      - 9000
      - target: 80
        published: "8081"
  db:
    image: postgres:16
networks:
  backend:
    driver: bridge
`

func TestParseDocument_Lines(t *testing.T) {
	doc, err := ParseDocument("compose.yaml", []byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		path []string
		line int
	}{
		{[]string{"version"}, 1},
		{[]string{"services", "app"}, 3},
		{[]string{"services", "app", "ports", "0"}, 5},
		{[]string{"services", "app", "ports", "2"}, 7},
		{[]string{"services", "db", "image"}, 10},
		{[]string{"networks", "backend", "driver"}, 13},
		{[]string{"services", "cache"}, 0},
		{[]string{"services", "app", "ports", "9"}, 0},
	}
	for _, tt := range tests {
		if got := doc.Line(tt.path...); got != tt.line {
			t.Errorf("Line(%v) = %d, want %d", tt.path, got, tt.line)
		}
	}
}

func TestParseDocument_KeysAndScalars(t *testing.T) {
	doc, err := ParseDocument("compose.yaml", []byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := doc.TopLevelKeys()
	want := []string{"version", "services", "networks"}
	if len(keys) != len(want) {
		t.Fatalf("TopLevelKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %s, want %s", i, keys[i], want[i])
		}
	}

	ports := doc.Scalars("services", "app", "ports")
	if len(ports) != 2 {
		t.Fatalf("expected 2 scalar ports, got %d", len(ports))
	}
	if ports[0].Value != "8080:8080" || ports[0].Tag != "!!str" {
		t.Errorf("unexpected first port %+v", ports[0])
	}
	if ports[1].Value != "9000" || ports[1].Tag != "!!int" || ports[1].Index != 1 {
		t.Errorf("unexpected second port %+v", ports[1])
	}

	if !doc.Has("services", "db", "image") || doc.Has("services", "db", "build") {
		t.Error("Has() mismatch")
	}
	if doc.Dict["version"] != "3.9" {
		t.Errorf("unexpected version %v", doc.Dict["version"])
	}
}

func TestParseDocument_Empty(t *testing.T) {
	doc, err := ParseDocument("compose.yaml", []byte("# nothing here\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Empty() {
		t.Error("expected empty document")
	}
	if doc.Line("services") != 0 {
		t.Error("expected no line for missing key")
	}
}

func TestParseDocument_Errors(t *testing.T) {
	if _, err := ParseDocument("compose.yaml", []byte("services: [unclosed\n")); err == nil {
		t.Error("expected a YAML syntax error")
	}

	_, err := ParseDocument("compose.yaml", []byte("- just\n- a list\n"))
	if !errors.Is(err, ErrNotMapping) {
		t.Errorf("expected ErrNotMapping, got %v", err)
	}
}
