package provider

import (
	"context"
	"sort"

	"github.com/klothoplatform/stackgraph/pkg/construct"
)

//go:generate mockgen -source=./provider.go --destination=../engine/provider_mock_test.go --package=engine

type (
	// ProviderContext is the explicit region/account context a collaborator call runs in. It is derived from the
	// Provider resource a node depends on.
	ProviderContext struct {
		Region      string
		Environment string
		Profile     string
		Tags        map[string]string
	}

	// Filter holds the resolved criteria of a lookup node (eg. owners, name patterns, most-recent).
	Filter = construct.Properties

	// Outputs are the attributes a collaborator reports for a committed resource. [construct.AttributeId]
	// is always set on success.
	Outputs map[string]any

	// ProvisionRequest is a node with every attribute ref replaced by its resolved value.
	ProvisionRequest struct {
		ID         construct.ResourceId
		Properties construct.Properties
	}

	// Lookup queries existing provider state (eg. the most recent AMI matching a filter).
	Lookup interface {
		Lookup(ctx context.Context, kind construct.Kind, filter Filter, pc ProviderContext) (any, error)
	}

	// Provisioner commits a resource and returns its attributes.
	Provisioner interface {
		Provision(ctx context.Context, pc ProviderContext, req ProvisionRequest) (Outputs, error)
	}

	// Collaborators bundles both capabilities, which is what concrete providers implement.
	Collaborators interface {
		Lookup
		Provisioner
	}
)

// MergedTags returns the provider tags overlaid with `tags`, which win on conflicts.
func (pc ProviderContext) MergedTags(tags map[string]string) map[string]string {
	merged := make(map[string]string, len(pc.Tags)+len(tags))
	for k, v := range pc.Tags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return merged
}

// SortedTagKeys returns the keys of `tags` in sorted order so that API requests are deterministic.
func SortedTagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
