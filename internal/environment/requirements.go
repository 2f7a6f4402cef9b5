package environment

import (
	"context"
	"fmt"
	"sort"

	"github.com/joho/godotenv"
	"github.com/losb/stackcheck/internal/environment/extractors"
	"github.com/losb/stackcheck/internal/environment/types"
	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/losb/stackcheck/internal/manifest"
)

// DefaultRequired are the variables the database service is configured with.
var DefaultRequired = []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_NAME"}

// skipDirs are never walked when scanning a build context.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "venv": true, ".venv": true,
	"__pycache__": true, "vendor": true, ".tox": true, "dist": true,
}

// Requirement is one variable that has to exist in the deploy environment.
type Requirement struct {
	Name      string        `json:"name" yaml:"name"`
	Type      types.EnvType `json:"type" yaml:"type"`
	Sensitive bool          `json:"sensitive" yaml:"sensitive"`
	// Optional requirements were only seen in application source or carry a
	// default; a missing entry in the example is a warning, not an error.
	Optional   bool     `json:"optional" yaml:"optional"`
	Default    string   `json:"default,omitempty" yaml:"default,omitempty"`
	Sources    []string `json:"sources" yaml:"sources"`
	Services   []string `json:"services,omitempty" yaml:"services,omitempty"`
	Documented bool     `json:"documented" yaml:"documented"`
	Provided   bool     `json:"provided" yaml:"provided"`
}

// Requirements is the collected deploy-time environment of a manifest.
type Requirements struct {
	Items []Requirement `json:"requirements" yaml:"requirements"`
	// Example is the env example path that was consulted.
	Example       string            `json:"example" yaml:"example"`
	ExampleFound  bool              `json:"exampleFound" yaml:"exampleFound"`
	ExampleValues map[string]string `json:"-" yaml:"-"`
}

// Get returns the requirement for name.
func (r *Requirements) Get(name string) (Requirement, bool) {
	for _, item := range r.Items {
		if item.Name == name {
			return item, true
		}
	}
	return Requirement{}, false
}

// Undocumented returns requirements the env example does not declare.
func (r *Requirements) Undocumented() []Requirement {
	var out []Requirement
	for _, item := range r.Items {
		if !item.Documented {
			out = append(out, item)
		}
	}
	return out
}

type Options struct {
	// Required names are always reported, whether or not the manifest mentions them.
	Required []string
	// EnvExample is resolved against the manifest directory when relative.
	EnvExample string
	// ScanSources walks each build context for environment reads.
	ScanSources bool
}

// Collector gathers requirements from a manifest, its build contexts and env files.
type Collector struct {
	fsys      filesystems.FileSystem
	extractor *Extractor
	// The manifest and env files are read whatever their names, so these
	// bypass the filename matching of extractor.
	compose *extractors.DockerComposeExtractor
	dotenv  *extractors.DotEnvExtractor
	opts    Options
}

func NewCollector(fsys filesystems.FileSystem, extractor *Extractor, opts Options) *Collector {
	if opts.EnvExample == "" {
		opts.EnvExample = ".env.example"
	}
	return &Collector{
		fsys:      fsys,
		extractor: extractor,
		compose:   extractors.NewDockerComposeExtractor(),
		dotenv:    extractors.NewDotEnvExtractor(),
		opts:      opts,
	}
}

type pending struct {
	req      Requirement
	sources  map[string]bool
	services map[string]bool
}

// Collect builds the requirement set for the manifest at manifestPath.
// project may be nil when compose-go rejected the manifest; only the raw
// manifest and the configured names are used then.
func (c *Collector) Collect(ctx context.Context, manifestPath string, project *manifest.Project) (*Requirements, error) {
	content, err := c.fsys.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	dir := c.fsys.Dir(manifestPath)
	found := make(map[string]*pending)
	add := func(r types.EnvResult, service string, optional bool) {
		p, ok := found[r.VarName]
		if !ok {
			p = &pending{
				req:      Requirement{Name: r.VarName, Type: r.Type, Sensitive: r.Sensitive, Optional: optional},
				sources:  make(map[string]bool),
				services: make(map[string]bool),
			}
			found[r.VarName] = p
		} else if !optional {
			p.req.Optional = false
		}
		if r.Sensitive {
			p.req.Sensitive = true
		}
		if r.HasDefault && p.req.Default == "" {
			p.req.Default = r.Value
		}
		p.sources[r.Source] = true
		if service != "" {
			p.services[service] = true
		}
	}

	// Invalid YAML yields nothing here; the syntax rule reports it.
	manifestVars, _ := c.compose.Extract(ctx, manifestPath, content)
	for _, r := range manifestVars {
		switch r.Origin {
		case types.OriginInterpolation:
			add(r, "", r.HasDefault && !r.Required)
		case types.OriginEnvironment:
			// Literal values are fixed in the manifest; only bare keys are
			// pulled from the runtime's environment.
			if !r.HasDefault {
				add(r, serviceFromSource(r.Source), false)
			}
		}
	}

	for _, name := range c.opts.Required {
		envType, sensitive := types.ClassifyEnvVar(name, "")
		add(types.EnvResult{VarName: name, Type: envType, Sensitive: sensitive, Source: "config:required_env"}, "", false)
	}

	if c.opts.ScanSources && project != nil {
		if err := c.scanBuildContexts(ctx, dir, project, add); err != nil {
			return nil, err
		}
	}

	reqs := &Requirements{Example: c.resolve(dir, c.opts.EnvExample)}
	values, err := c.readDotEnv(ctx, reqs.Example)
	switch {
	case err == nil:
		reqs.ExampleFound = true
		reqs.ExampleValues = values
	case !filesystems.IsNotExist(err):
		return nil, err
	}

	provided := c.providedByEnvFiles(ctx, dir, project)

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := found[name]
		p.req.Sources = sortedKeys(p.sources)
		p.req.Services = sortedKeys(p.services)
		_, p.req.Documented = reqs.ExampleValues[name]
		p.req.Provided = provided[name]
		reqs.Items = append(reqs.Items, p.req)
	}

	return reqs, nil
}

func (c *Collector) scanBuildContexts(ctx context.Context, dir string, project *manifest.Project, add func(types.EnvResult, string, bool)) error {
	contexts := make(map[string]string)
	for _, s := range project.Services {
		if s.Build != nil {
			contexts[c.resolve(dir, s.Build.Context)] = s.Name
		}
	}

	for root, serviceName := range contexts {
		if !filesystems.IsDir(c.fsys, root) {
			continue
		}
		service, _ := project.Service(serviceName)

		var usage, defaults []types.EnvResult
		err := c.fsys.Walk(root, func(path string, info filesystems.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if info.IsDir() {
				if path != root && (skipDirs[info.Name()] || contexts[path] != "") {
					return filesystems.SkipDir
				}
				return nil
			}

			content, err := c.fsys.ReadFile(path)
			if err != nil {
				return nil
			}
			for _, r := range c.extractor.ExtractAll(ctx, path, content) {
				switch r.Origin {
				case types.OriginUsage:
					usage = append(usage, r)
				case types.OriginDockerfile:
					defaults = append(defaults, r)
				case types.OriginDotEnv:
					// A .env shipped in the context is loaded by the app;
					// example files only document names.
					if r.Confidence > extractors.ExampleConfidence {
						defaults = append(defaults, r)
					}
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan build context %s: %w", root, err)
		}

		satisfied := make(map[string]bool)
		for _, r := range defaults {
			satisfied[r.VarName] = true
		}
		for key, v := range service.Environment {
			if v.Set {
				satisfied[key] = true
			}
		}
		for _, r := range usage {
			if !satisfied[r.VarName] {
				add(r, serviceName, true)
			}
		}
	}

	return nil
}

func (c *Collector) providedByEnvFiles(ctx context.Context, dir string, project *manifest.Project) map[string]bool {
	provided := make(map[string]bool)
	if project == nil {
		return provided
	}
	for _, s := range project.Services {
		for _, f := range s.EnvFiles {
			values, err := c.readDotEnv(ctx, c.resolve(dir, f))
			if err != nil {
				continue
			}
			for k := range values {
				provided[k] = true
			}
		}
	}
	return provided
}

// readDotEnv reads a dotenv file through the dotenv extractor. Read errors
// are returned unwrapped so callers can test for a missing file.
func (c *Collector) readDotEnv(ctx context.Context, path string) (map[string]string, error) {
	content, err := c.fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	results, err := c.dotenv.Extract(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	values := make(map[string]string, len(results))
	for _, r := range results {
		values[r.VarName] = r.Value
	}
	return values, nil
}

func (c *Collector) resolve(dir, p string) string {
	if c.fsys.IsAbs(p) {
		return p
	}
	return c.fsys.Join(dir, p)
}

func serviceFromSource(source string) string {
	for i := len(source) - 1; i >= 0; i-- {
		if source[i] == '#' {
			return source[i+1:]
		}
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Template renders a dotenv file listing every requirement. Sensitive values
// are left empty; others carry their default.
func Template(reqs *Requirements) (string, error) {
	env := make(map[string]string, len(reqs.Items))
	for _, item := range reqs.Items {
		if item.Sensitive {
			env[item.Name] = ""
			continue
		}
		env[item.Name] = item.Default
	}
	return godotenv.Marshal(env)
}
