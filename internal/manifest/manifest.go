// Package manifest models a compose deployment manifest as plain
// configuration records: services, networks and volumes.
package manifest

import "sort"

// Project is a loaded deployment manifest.
type Project struct {
	Name       string    `json:"name" yaml:"name" toml:"name"`
	Version    string    `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	WorkingDir string    `json:"workingDir" yaml:"workingDir" toml:"workingDir"`
	Source     string    `json:"source" yaml:"source" toml:"source"`
	Services   []Service `json:"services" yaml:"services" toml:"services"`
	Networks   []Network `json:"networks,omitempty" yaml:"networks,omitempty" toml:"networks,omitempty"`
	Volumes    []Volume  `json:"volumes,omitempty" yaml:"volumes,omitempty" toml:"volumes,omitempty"`
}

// Service is a named container definition.
type Service struct {
	Name          string              `json:"name" yaml:"name" toml:"name"`
	Build         *Build              `json:"build,omitempty" yaml:"build,omitempty" toml:"build,omitempty"`
	Image         string              `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
	ContainerName string              `json:"containerName,omitempty" yaml:"containerName,omitempty" toml:"containerName,omitempty"`
	Ports         []PortMapping       `json:"ports,omitempty" yaml:"ports,omitempty" toml:"ports,omitempty"`
	EnvFiles      []string            `json:"envFiles,omitempty" yaml:"envFiles,omitempty" toml:"envFiles,omitempty"`
	Environment   map[string]EnvValue `json:"environment,omitempty" yaml:"environment,omitempty" toml:"environment,omitempty"`
	DependsOn     []string            `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty" toml:"dependsOn,omitempty"`
	Networks      []string            `json:"networks,omitempty" yaml:"networks,omitempty" toml:"networks,omitempty"`
	Mounts        []Mount             `json:"mounts,omitempty" yaml:"mounts,omitempty" toml:"mounts,omitempty"`
}

// Build is where a service image is built from.
type Build struct {
	Context    string `json:"context" yaml:"context" toml:"context"`
	Dockerfile string `json:"dockerfile,omitempty" yaml:"dockerfile,omitempty" toml:"dockerfile,omitempty"`
}

// PortMapping is a published port. Published may be empty for a bare
// container port, in which case the runtime picks a host port.
type PortMapping struct {
	HostIP    string `json:"hostIP,omitempty" yaml:"hostIP,omitempty" toml:"hostIP,omitempty"`
	Published string `json:"published,omitempty" yaml:"published,omitempty" toml:"published,omitempty"`
	Target    uint32 `json:"target" yaml:"target" toml:"target"`
	Protocol  string `json:"protocol,omitempty" yaml:"protocol,omitempty" toml:"protocol,omitempty"`
}

// Mount types.
const (
	MountVolume = "volume"
	MountBind   = "bind"
)

// Mount attaches a named volume or host path into a container.
type Mount struct {
	Type     string `json:"type" yaml:"type" toml:"type"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Target   string `json:"target" yaml:"target" toml:"target"`
	ReadOnly bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty" toml:"readOnly,omitempty"`
}

// EnvValue is a literal environment entry. Set is false for entries declared
// without a value, which the runtime resolves from its own environment.
type EnvValue struct {
	Value     string `json:"value" yaml:"value" toml:"value"`
	Set       bool   `json:"set" yaml:"set" toml:"set"`
	Sensitive bool   `json:"sensitive" yaml:"sensitive" toml:"sensitive"`
}

// Network is a top-level network declaration.
type Network struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Driver   string `json:"driver,omitempty" yaml:"driver,omitempty" toml:"driver,omitempty"`
	External bool   `json:"external,omitempty" yaml:"external,omitempty" toml:"external,omitempty"`
}

// Volume is a top-level named volume. Storage location is left to the runtime.
type Volume struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Driver   string `json:"driver,omitempty" yaml:"driver,omitempty" toml:"driver,omitempty"`
	External bool   `json:"external,omitempty" yaml:"external,omitempty" toml:"external,omitempty"`
}

func NewProject(name string) *Project {
	return &Project{
		Name:     name,
		Services: make([]Service, 0),
	}
}

func NewService(name string) Service {
	return Service{
		Name:        name,
		Environment: make(map[string]EnvValue),
	}
}

func (p *Project) AddService(service Service) {
	p.Services = append(p.Services, service)
}

// Sort orders services, networks and volumes by name.
func (p *Project) Sort() {
	sort.Slice(p.Services, func(i, j int) bool { return p.Services[i].Name < p.Services[j].Name })
	sort.Slice(p.Networks, func(i, j int) bool { return p.Networks[i].Name < p.Networks[j].Name })
	sort.Slice(p.Volumes, func(i, j int) bool { return p.Volumes[i].Name < p.Volumes[j].Name })
}

func (p *Project) Service(name string) (*Service, bool) {
	for i := range p.Services {
		if p.Services[i].Name == name {
			return &p.Services[i], true
		}
	}
	return nil, false
}

func (p *Project) Network(name string) (*Network, bool) {
	for i := range p.Networks {
		if p.Networks[i].Name == name {
			return &p.Networks[i], true
		}
	}
	return nil, false
}

func (p *Project) Volume(name string) (*Volume, bool) {
	for i := range p.Volumes {
		if p.Volumes[i].Name == name {
			return &p.Volumes[i], true
		}
	}
	return nil, false
}

// ServiceNames returns service names in declaration order.
func (p *Project) ServiceNames() []string {
	names := make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		names = append(names, s.Name)
	}
	return names
}

// UsesBuild reports whether the service is built from a local context
// rather than pulled.
func (s *Service) UsesBuild() bool {
	return s.Build != nil
}

// NamedVolumes returns the sources of the service's volume mounts.
func (s *Service) NamedVolumes() []string {
	var names []string
	for _, m := range s.Mounts {
		if m.Type == MountVolume && m.Source != "" {
			names = append(names, m.Source)
		}
	}
	return names
}
