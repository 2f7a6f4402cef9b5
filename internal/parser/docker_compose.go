package parser

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/template"
	composeTypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/joho/godotenv"
	"github.com/losb/stackcheck/internal/environment/types"
	"github.com/losb/stackcheck/internal/filesystems"
	"github.com/losb/stackcheck/internal/manifest"
	"github.com/sirupsen/logrus"
)

const defaultProjectName = "stack"

type Options struct {
	// ProjectName overrides the name derived from the manifest directory.
	ProjectName string
	// EnvFiles supply interpolation values, resolved against the manifest
	// directory. Missing files are skipped.
	EnvFiles []string
	// OSEnv overlays the process environment on top of EnvFiles.
	OSEnv bool
}

type DockerComposeParser struct {
	fsys filesystems.FileSystem
	opts Options
	log  logrus.FieldLogger
}

func NewDockerComposeParser(fsys filesystems.FileSystem, opts Options, log logrus.FieldLogger) *DockerComposeParser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DockerComposeParser{fsys: fsys, opts: opts, log: log}
}

func (p *DockerComposeParser) Parse(ctx context.Context, path string) (*Result, error) {
	content, err := p.fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := &Result{Path: path}
	result.Document, result.DocErr = ParseDocument(path, content)
	if result.DocErr != nil {
		return result, nil
	}

	dir := p.fsys.Dir(path)
	env := p.interpolationEnv(dir)
	projectName := p.projectName(dir)

	configDetails := composeTypes.ConfigDetails{
		WorkingDir: dir,
		ConfigFiles: []composeTypes.ConfigFile{
			{Filename: path, Content: content},
		},
		Environment: env,
	}

	// Consistency and env_file resolution are reported by the validator
	// with positions, so compose-go must not fail on them first.
	project, err := loader.LoadWithContext(ctx, configDetails, func(options *loader.Options) {
		options.SetProjectName(projectName, true)
		options.SkipConsistencyCheck = true
		options.SkipResolveEnvironment = true
		options.ResolvePaths = false
		// Unset variables are reported by the environment rule; compose-go
		// would otherwise warn once per reference on the global logger.
		if options.Interpolate != nil {
			options.Interpolate.Substitute = substituteQuietly
		}
	})
	if err != nil {
		result.LoadErr = err
		p.log.WithError(err).WithField("manifest", path).Debug("compose load failed")
		return result, nil
	}

	result.Project = p.convertProject(project, path, dir, result.Document)
	return result, nil
}

func substituteQuietly(value string, mapping template.Mapping) (string, error) {
	return template.SubstituteWithOptions(value, mapping, template.WithoutLogging)
}

func (p *DockerComposeParser) projectName(dir string) string {
	if p.opts.ProjectName != "" {
		return loader.NormalizeProjectName(p.opts.ProjectName)
	}
	name := loader.NormalizeProjectName(p.fsys.Base(dir))
	if name == "" {
		abs, err := absDir(p.fsys, dir)
		if err == nil {
			name = loader.NormalizeProjectName(p.fsys.Base(abs))
		}
	}
	if name == "" {
		name = defaultProjectName
	}
	return name
}

func absDir(fsys filesystems.FileSystem, dir string) (string, error) {
	if _, ok := fsys.(*filesystems.LocalFS); !ok || fsys.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return fsys.Join(wd, dir), nil
}

// interpolationEnv merges the configured env files, later files winning,
// and finally the OS environment when enabled.
func (p *DockerComposeParser) interpolationEnv(dir string) composeTypes.Mapping {
	env := composeTypes.Mapping{}
	for _, f := range p.opts.EnvFiles {
		if !p.fsys.IsAbs(f) {
			f = p.fsys.Join(dir, f)
		}
		content, err := p.fsys.ReadFile(f)
		if err != nil {
			continue
		}
		values, err := godotenv.Unmarshal(string(content))
		if err != nil {
			p.log.WithError(err).WithField("file", f).Warn("ignoring unparseable env file")
			continue
		}
		for k, v := range values {
			env[k] = v
		}
	}

	if p.opts.OSEnv {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}
	return env
}

func (p *DockerComposeParser) convertProject(project *composeTypes.Project, path, dir string, doc *Document) *manifest.Project {
	out := manifest.NewProject(project.Name)
	out.Source = path
	out.WorkingDir = dir
	if version, ok := doc.Dict["version"]; ok && version != nil {
		out.Version = fmt.Sprint(version)
	}

	for name, composeService := range project.Services {
		out.AddService(p.convertService(name, composeService))
	}

	for name, n := range project.Networks {
		out.Networks = append(out.Networks, manifest.Network{
			Name:     name,
			Driver:   n.Driver,
			External: bool(n.External),
		})
	}

	for name, v := range project.Volumes {
		out.Volumes = append(out.Volumes, manifest.Volume{
			Name:     name,
			Driver:   v.Driver,
			External: bool(v.External),
		})
	}

	out.Sort()
	return out
}

func (p *DockerComposeParser) convertService(name string, composeService composeTypes.ServiceConfig) manifest.Service {
	service := manifest.NewService(name)
	service.Image = composeService.Image
	service.ContainerName = composeService.ContainerName

	if composeService.Build != nil {
		service.Build = &manifest.Build{
			Context:    composeService.Build.Context,
			Dockerfile: composeService.Build.Dockerfile,
		}
		if service.Build.Context == "" {
			service.Build.Context = "."
		}
	}

	for key, value := range composeService.Environment {
		if value == nil {
			service.Environment[key] = manifest.EnvValue{}
			continue
		}
		_, sensitive := types.ClassifyEnvVar(key, *value)
		service.Environment[key] = manifest.EnvValue{Value: *value, Set: true, Sensitive: sensitive}
	}

	for _, f := range composeService.EnvFiles {
		service.EnvFiles = append(service.EnvFiles, f.Path)
	}

	for _, port := range composeService.Ports {
		service.Ports = append(service.Ports, manifest.PortMapping{
			HostIP:    port.HostIP,
			Published: port.Published,
			Target:    port.Target,
			Protocol:  port.Protocol,
		})
	}

	for dep := range composeService.DependsOn {
		service.DependsOn = append(service.DependsOn, dep)
	}
	sort.Strings(service.DependsOn)

	for network := range composeService.Networks {
		service.Networks = append(service.Networks, network)
	}
	sort.Strings(service.Networks)

	for _, v := range composeService.Volumes {
		service.Mounts = append(service.Mounts, manifest.Mount{
			Type:     v.Type,
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		})
	}

	return service
}
