package stackcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/losb/stackcheck/deploy"
	"github.com/losb/stackcheck/internal/discovery"
	"github.com/losb/stackcheck/internal/environment"
	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/losb/stackcheck/internal/parser"
)

// loaded is a manifest resolved from the command line, parsed and with its
// environment requirements collected.
type loaded struct {
	fsys         filesystems.FileSystem
	result       *parser.Result
	requirements *environment.Requirements
}

// resolveManifest turns the optional path argument into a filesystem and a
// manifest path, and reports whether the embedded manifest was chosen.
func resolveManifest(args []string, bundled bool) (filesystems.FileSystem, string, bool, error) {
	if bundled {
		return deploy.Files(), deploy.ManifestName, true, nil
	}

	source := "."
	if len(args) > 0 {
		source = args[0]
	}

	fsys, p, err := filesystems.NewFileSystem(source)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to create filesystem: %w", err)
	}
	return findManifest(fsys, p, len(args) > 0)
}

// findManifest searches a directory for a compose file. When the directory
// was not named explicitly and holds none, the bundled manifest is used.
func findManifest(fsys filesystems.FileSystem, p string, explicit bool) (filesystems.FileSystem, string, bool, error) {
	if !filesystems.IsDir(fsys, p) {
		return fsys, p, false, nil
	}

	manifestPath, err := discovery.FindManifest(fsys, p)
	if errors.Is(err, discovery.ErrNoManifest) && !explicit {
		log.Info("no compose file in the current directory; using the bundled manifest")
		return deploy.Files(), deploy.ManifestName, true, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("%s: %w", p, err)
	}
	return fsys, manifestPath, false, nil
}

func loadManifest(ctx context.Context, args []string, bundled bool) (*loaded, error) {
	fsys, manifestPath, isBundled, err := resolveManifest(args, bundled)
	if err != nil {
		return nil, err
	}
	// The bundled manifest is checked as shipped, not against this shell.
	return load(ctx, fsys, manifestPath, !isBundled)
}

func load(ctx context.Context, fsys filesystems.FileSystem, manifestPath string, osEnv bool) (*loaded, error) {
	var p parser.Parser = parser.NewDockerComposeParser(fsys, parser.Options{
		EnvFiles: []string{".env"},
		OSEnv:    osEnv,
	}, log)
	result, err := p.Parse(ctx, manifestPath)
	if err != nil {
		return nil, err
	}

	out := &loaded{fsys: fsys, result: result}
	if result.DocErr != nil {
		return out, nil
	}

	collector := environment.NewCollector(fsys, environment.NewExtractor(log), environment.Options{
		Required:    cfg.RequiredEnv,
		EnvExample:  cfg.EnvExample,
		ScanSources: cfg.ScanSources,
	})
	out.requirements, err = collector.Collect(ctx, manifestPath, result.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to collect environment: %w", err)
	}
	return out, nil
}

// requireProject fails when the manifest could not be loaded as a compose
// project.
func (l *loaded) requireProject() error {
	if l.result.DocErr != nil {
		return l.result.DocErr
	}
	if l.result.LoadErr != nil {
		return fmt.Errorf("%s: %w", l.result.Path, l.result.LoadErr)
	}
	return nil
}
