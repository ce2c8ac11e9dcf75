package mapping

import (
	"fmt"
	"sort"
)

// Condition controls how a code group is satisfied: "any" means a single
// matching code suffices, "both" means every sub-group must contribute at
// least one matching code.
type Condition string

const (
	ConditionAny  Condition = "any"
	ConditionBoth Condition = "both"
)

// CodeGroup is one unit of matching logic inside a category. Exactly one of
// Codes (condition=any) or Groups (condition=both) is populated.
type CodeGroup struct {
	Condition Condition
	Codes     []string
	Groups    [][]string
}

// Category is a named, weighted comorbidity class.
type Category struct {
	Name      string      `yaml:"name"`
	Weight    int         `yaml:"weight"`
	Codes     []CodeGroup `yaml:"codes"`
	DependsOn []string    `yaml:"depends_on,omitempty"`
}

// CategoryTable maps category id to its definition for one mapping version.
type CategoryTable map[string]Category

// Registry holds every mapping version known to the process. It is immutable
// after Validate; scoring calls share it without coordination.
type Registry struct {
	Versions map[string]CategoryTable
}

// Table returns the category table for a version, or false if the version is
// not part of this registry.
func (r *Registry) Table(version string) (CategoryTable, bool) {
	t, ok := r.Versions[version]
	return t, ok
}

// VersionIDs returns the known mapping version ids, sorted.
func (r *Registry) VersionIDs() []string {
	ids := make([]string, 0, len(r.Versions))
	for id := range r.Versions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the structural invariants of every version: non-negative
// weights, well-formed code groups, known condition values, and depends_on
// references that resolve within the same version.
func (r *Registry) Validate() error {
	if len(r.Versions) == 0 {
		return fmt.Errorf("registry contains no mapping versions")
	}
	for version, table := range r.Versions {
		for id, cat := range table {
			if cat.Name == "" {
				return fmt.Errorf("%s/%s: missing name", version, id)
			}
			if cat.Weight < 0 {
				return fmt.Errorf("%s/%s: negative weight %d", version, id, cat.Weight)
			}
			for i, g := range cat.Codes {
				switch g.Condition {
				case ConditionAny:
					if len(g.Codes) == 0 {
						return fmt.Errorf("%s/%s: code group %d has condition=any but no codes", version, id, i)
					}
				case ConditionBoth:
					if len(g.Groups) == 0 {
						return fmt.Errorf("%s/%s: code group %d has condition=both but no sub-groups", version, id, i)
					}
					for j, sub := range g.Groups {
						if len(sub) == 0 {
							return fmt.Errorf("%s/%s: code group %d sub-group %d is empty", version, id, i, j)
						}
					}
				default:
					return fmt.Errorf("%s/%s: code group %d has unknown condition %q", version, id, i, g.Condition)
				}
			}
			for _, dep := range cat.DependsOn {
				if dep == id {
					return fmt.Errorf("%s/%s: depends_on references itself", version, id)
				}
				if _, ok := table[dep]; !ok {
					return fmt.Errorf("%s/%s: depends_on references unknown category %q", version, id, dep)
				}
			}
		}
	}
	return nil
}

// RegistrySource yields the registry a scoring call should use. Implemented
// by Static for a fixed registry and by Watcher for hot-reloaded ones.
type RegistrySource interface {
	Current() *Registry
}

// Static is a RegistrySource that always returns the same registry.
type Static struct {
	registry *Registry
}

func NewStatic(r *Registry) *Static {
	return &Static{registry: r}
}

func (s *Static) Current() *Registry { return s.registry }
