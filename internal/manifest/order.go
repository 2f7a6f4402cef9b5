package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDependencyCycle = errors.New("dependency cycle")
	ErrUnknownService  = errors.New("unknown service")
)

// StartOrder returns service names ordered so every service comes after the
// services it depends on. Services with no ordering constraint between them
// are ordered by name.
func (p *Project) StartOrder() ([]string, error) {
	indegree := make(map[string]int, len(p.Services))
	dependents := make(map[string][]string, len(p.Services))

	for _, s := range p.Services {
		if _, ok := indegree[s.Name]; !ok {
			indegree[s.Name] = 0
		}
	}

	for _, s := range p.Services {
		for _, dep := range s.DependsOn {
			if _, ok := indegree[dep]; !ok {
				return nil, fmt.Errorf("service %s depends on %s: %w", s.Name, dep, ErrUnknownService)
			}
			indegree[s.Name]++
			dependents[dep] = append(dependents[dep], s.Name)
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(indegree))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, d := range next {
			indegree[d]--
			if indegree[d] == 0 {
				ready = insertSorted(ready, d)
			}
		}
	}

	if len(order) != len(indegree) {
		var stuck []string
		for name, n := range indegree {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w between %s", ErrDependencyCycle, strings.Join(stuck, ", "))
	}

	return order, nil
}

func insertSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}
