package validate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
)

// PortsRule checks that short-syntax port entries are well-formed
// host:container pairs and that no host port is published twice. An empty,
// 0.0.0.0 or :: host address binds every interface and so clashes with any
// other address on the same port.
type PortsRule struct{}

func (r *PortsRule) Name() string { return "ports" }

type hostPort struct {
	port  int
	proto string
}

type binding struct {
	ip      string
	service string
}

func hostIP(ip string) string {
	switch ip = strings.Trim(ip, "[]"); ip {
	case "", "0.0.0.0", "::":
		return ""
	}
	return ip
}

func (b binding) overlaps(ip string) bool {
	return b.ip == "" || ip == "" || b.ip == ip
}

func (r *PortsRule) Check(ctx context.Context, in *Input) []Diagnostic {
	doc := in.doc()
	if doc == nil {
		return nil
	}

	var diags []Diagnostic
	bound := make(map[hostPort][]binding)

	for _, service := range doc.Keys("services") {
		for _, entry := range doc.Scalars("services", service, "ports") {
			p := path("services", service, "ports", strconv.Itoa(entry.Index))

			if entry.Tag == "!!int" {
				diags = append(diags, newDiag(SeverityWarning, entry.Line, p,
					fmt.Sprintf("container port %s is published on a random host port; use host:container", entry.Value)))
				continue
			}

			if strings.Contains(entry.Value, "$") {
				continue // interpolated; checked once the runtime resolves it
			}

			mappings, err := nat.ParsePortSpec(entry.Value)
			if err != nil {
				diags = append(diags, newDiag(SeverityError, entry.Line, p,
					fmt.Sprintf("malformed port mapping %q: %v", entry.Value, err)))
				continue
			}

			if !entry.Quoted && strings.Contains(entry.Value, ":") {
				diags = append(diags, newDiag(SeverityInfo, entry.Line, p,
					fmt.Sprintf("quote port mapping %q; YAML 1.1 parsers read unquoted xx:yy as a base-60 number", entry.Value)))
			}

			for _, m := range mappings {
				if m.Port.Int() == 0 {
					diags = append(diags, newDiag(SeverityError, entry.Line, p,
						fmt.Sprintf("container port in %q must be between 1 and 65535", entry.Value)))
					continue
				}

				if m.Binding.HostPort == "" {
					diags = append(diags, newDiag(SeverityWarning, entry.Line, p,
						fmt.Sprintf("container port %s is published on a random host port; use host:container", m.Port.Port())))
					continue
				}

				port, err := strconv.Atoi(m.Binding.HostPort)
				if err != nil || port < 1 || port > 65535 {
					diags = append(diags, newDiag(SeverityError, entry.Line, p,
						fmt.Sprintf("host port in %q must be between 1 and 65535", entry.Value)))
					continue
				}

				key := hostPort{port: port, proto: m.Port.Proto()}
				ip := hostIP(m.Binding.HostIP)
				if owner, taken := conflict(bound[key], ip); taken {
					by := fmt.Sprintf("service %q", owner)
					if owner == service {
						by = "this service"
					}
					diags = append(diags, newDiag(SeverityError, entry.Line, p,
						fmt.Sprintf("host port %d/%s is already published by %s", key.port, key.proto, by)))
					continue
				}
				bound[key] = append(bound[key], binding{ip: ip, service: service})
			}
		}
	}

	return diags
}

func conflict(existing []binding, ip string) (string, bool) {
	for _, b := range existing {
		if b.overlaps(ip) {
			return b.service, true
		}
	}
	return "", false
}
