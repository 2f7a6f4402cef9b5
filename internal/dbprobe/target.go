// Package dbprobe waits for the manifest's Postgres service to accept
// connections using the credentials the deployment supplies.
package dbprobe

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/losb/stackcheck/internal/manifest"
)

const (
	EnvUser     = "POSTGRES_USER"
	EnvPassword = "POSTGRES_PASSWORD"
	EnvName     = "POSTGRES_NAME"
	// EnvDB is the name the official image reads; used when EnvName is unset.
	EnvDB = "POSTGRES_DB"

	postgresPort = 5432
)

var (
	ErrNotPublished       = errors.New("service does not publish a host port")
	ErrMissingCredentials = errors.New("missing database credentials")
)

// Target is a Postgres endpoint reachable from the host.
type Target struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// TargetFor derives the endpoint of service from its published ports and
// the credentials in env. Values fixed in the service environment are used
// when env does not set them.
func TargetFor(project *manifest.Project, service string, env map[string]string) (Target, error) {
	s, ok := project.Service(service)
	if !ok {
		return Target{}, fmt.Errorf("service %s: %w", service, manifest.ErrUnknownService)
	}

	port, ok := publishedPort(s)
	if !ok {
		return Target{}, fmt.Errorf("service %s: %w", service, ErrNotPublished)
	}

	t := Target{
		Host:     "localhost",
		Port:     port.port,
		User:     lookup(s, env, EnvUser),
		Password: lookup(s, env, EnvPassword),
		Database: lookup(s, env, EnvName),
		SSLMode:  "disable",
	}
	if port.hostIP != "" && port.hostIP != "0.0.0.0" && port.hostIP != "::" {
		t.Host = port.hostIP
	}
	if t.Database == "" {
		t.Database = lookup(s, env, EnvDB)
	}
	if t.Database == "" {
		t.Database = t.User
	}
	if t.User == "" {
		return Target{}, fmt.Errorf("service %s: %w: %s is not set", service, ErrMissingCredentials, EnvUser)
	}
	return t, nil
}

type hostPort struct {
	hostIP string
	port   int
}

// publishedPort prefers the mapping of the Postgres container port.
func publishedPort(s *manifest.Service) (hostPort, bool) {
	var found []hostPort
	for _, p := range s.Ports {
		n, err := strconv.Atoi(p.Published)
		if err != nil || n <= 0 {
			continue
		}
		hp := hostPort{hostIP: p.HostIP, port: n}
		if p.Target == postgresPort {
			return hp, true
		}
		found = append(found, hp)
	}
	if len(found) == 0 {
		return hostPort{}, false
	}
	return found[0], true
}

func lookup(s *manifest.Service, env map[string]string, key string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	if v, ok := s.Environment[key]; ok && v.Set {
		return v.Value
	}
	return ""
}

func (t Target) url() *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(t.Host, strconv.Itoa(t.Port)),
		Path:   "/" + t.Database,
	}
	if t.Password != "" {
		u.User = url.UserPassword(t.User, t.Password)
	} else {
		u.User = url.User(t.User)
	}
	if t.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{t.SSLMode}}.Encode()
	}
	return u
}

// DSN renders the lib/pq connection URL.
func (t Target) DSN() string {
	return t.url().String()
}

// String is the DSN with the password redacted.
func (t Target) String() string {
	return t.url().Redacted()
}
