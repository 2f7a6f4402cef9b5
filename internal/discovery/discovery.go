// Package discovery finds deployment configuration files in a tree.
package discovery

import (
	"errors"

	"github.com/losb/stackcheck/internal/discovery/detectors"
	"github.com/losb/stackcheck/internal/filesystems"
)

// ErrNoManifest is returned when a directory holds no compose file.
var ErrNoManifest = errors.New("no compose file found")

// ManifestNames are the compose file names in lookup precedence.
var ManifestNames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "venv": true, ".venv": true,
	"__pycache__": true, ".tox": true,
}

// ConfigFile represents a discovered deployment configuration file
type ConfigFile struct {
	Path string `json:"path" yaml:"path"`
	Type string `json:"type" yaml:"type"` // detector name like "docker-compose", "dotenv"
}

// Detector recognises one kind of configuration file by name.
type Detector interface {
	Name() string
	Detect(filename string) bool
}

// Scanner handles recursive discovery using registered detectors
type Scanner struct {
	detectors []Detector
}

func NewScanner() *Scanner {
	return &Scanner{detectors: make([]Detector, 0)}
}

// DefaultDetectors returns the detectors used by the discover command.
func DefaultDetectors() []Detector {
	return []Detector{
		&detectors.DockerCompose{},
		&detectors.Dockerfile{},
		&detectors.Dotenv{},
	}
}

// NewScannerWithDetectors creates a scanner with the provided detectors
func NewScannerWithDetectors(detectors []Detector) *Scanner {
	scanner := NewScanner()
	for _, detector := range detectors {
		scanner.RegisterDetector(detector)
	}
	return scanner
}

func (s *Scanner) RegisterDetector(detector Detector) {
	s.detectors = append(s.detectors, detector)
}

// DiscoverConfigs walks root and returns every file a detector claims, in
// walk order. The first matching detector wins.
func (s *Scanner) DiscoverConfigs(fsys filesystems.FileSystem, root string) ([]ConfigFile, error) {
	var configs []ConfigFile

	err := fsys.Walk(root, func(path string, info filesystems.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && skipDirs[info.Name()] {
				return filesystems.SkipDir
			}
			return nil
		}

		for _, detector := range s.detectors {
			if detector.Detect(info.Name()) {
				configs = append(configs, ConfigFile{
					Path: path,
					Type: detector.Name(),
				})
				break // first match wins
			}
		}

		return nil
	})

	return configs, err
}

// FindManifest returns the primary compose file in dir.
func FindManifest(fsys filesystems.FileSystem, dir string) (string, error) {
	if p, ok := filesystems.FirstExisting(fsys, dir, ManifestNames...); ok {
		return p, nil
	}
	return "", ErrNoManifest
}
