// Package fanout replicates a resource subgraph template once per target region.
package fanout

import (
	"errors"
	"fmt"

	"github.com/klothoplatform/stackgraph/pkg/construct"
)

type (
	// RegionSpec is one fan-out target.
	RegionSpec struct {
		RegionId       string `yaml:"region" toml:"region" mapstructure:"region"`
		EnvironmentTag string `yaml:"environment" toml:"environment" mapstructure:"environment"`
	}

	// Subgraph is the set of resources a template declares for a single region.
	Subgraph = *construct.Declarations

	// Template declares the resources for one region. It is invoked exactly once per RegionSpec.
	Template func(region RegionSpec) (Subgraph, error)

	// Expansion is the result of [Expand]: one subgraph per input region, in input order.
	Expansion struct {
		regions   []RegionSpec
		subgraphs []Subgraph
	}
)

var ErrEmptyRegionList = errors.New("at least one region is required")

// EmptyRegionListError is returned by [Expand] when no regions are given.
type EmptyRegionListError struct{}

func (EmptyRegionListError) Error() string {
	return ErrEmptyRegionList.Error()
}

func (EmptyRegionListError) Is(target error) bool {
	return target == ErrEmptyRegionList
}

func (r RegionSpec) String() string {
	if r.EnvironmentTag == "" {
		return r.RegionId
	}
	return r.RegionId + "/" + r.EnvironmentTag
}

// Namespaced returns `name` suffixed with the region so resources from different regions never collide.
func (r RegionSpec) Namespaced(name string) string {
	return Namespaced(name, r.RegionId)
}

func Namespaced(name, region string) string {
	return name + "-" + region
}

// Expand invokes `template` once per region, in order. Subgraphs must be disjoint: a resource declared by
// more than one region fails with [construct.DuplicateNameError]. Duplicate RegionSpecs are not
// deduplicated, so a repeated region fails the same way.
func Expand(template Template, regions []RegionSpec) (*Expansion, error) {
	if len(regions) == 0 {
		return nil, EmptyRegionListError{}
	}
	exp := &Expansion{
		regions:   make([]RegionSpec, 0, len(regions)),
		subgraphs: make([]Subgraph, 0, len(regions)),
	}
	declaredBy := make(map[construct.ResourceId]RegionSpec)
	for i, region := range regions {
		if region.RegionId == "" {
			return nil, fmt.Errorf("region #%d has no region id", i)
		}
		sub, err := template(region)
		if err != nil {
			return nil, fmt.Errorf("could not expand template for region %s: %w", region, err)
		}
		if sub == nil {
			sub = construct.NewDeclarations()
		}
		for _, id := range sub.Ids() {
			if prev, ok := declaredBy[id]; ok {
				return nil, fmt.Errorf("region %s redeclares a resource of region %s: %w",
					region, prev, &construct.DuplicateNameError{ID: id})
			}
			declaredBy[id] = region
		}
		exp.regions = append(exp.regions, region)
		exp.subgraphs = append(exp.subgraphs, sub)
	}
	return exp, nil
}

func (e *Expansion) Len() int {
	return len(e.regions)
}

// Get returns the i'th region and its subgraph.
func (e *Expansion) Get(i int) (RegionSpec, Subgraph) {
	return e.regions[i], e.subgraphs[i]
}

// Regions returns the regions in input order.
func (e *Expansion) Regions() []RegionSpec {
	return append([]RegionSpec(nil), e.regions...)
}

// Subgraph returns the subgraph of the first occurrence of `region`.
func (e *Expansion) Subgraph(region RegionSpec) (Subgraph, bool) {
	for i, r := range e.regions {
		if r == region {
			return e.subgraphs[i], true
		}
	}
	return nil, false
}

// Merge folds every subgraph into `into`, in region order.
func (e *Expansion) Merge(into *construct.Declarations) error {
	for i, sub := range e.subgraphs {
		if err := into.Merge(sub); err != nil {
			return fmt.Errorf("could not merge resources for region %s: %w", e.regions[i], err)
		}
	}
	return nil
}
