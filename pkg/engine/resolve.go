package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond"
	"github.com/dominikbraun/graph"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/klothoplatform/stackgraph/pkg/provider"
	"go.uber.org/zap"
)

// Resolver runs the resolution pass over an assembled [ResourceGraph].
type Resolver struct {
	Lookup      provider.Lookup
	Provisioner provider.Provisioner

	// Default is the provider context for resources that do not depend on a Provider resource. Provider
	// resources also inherit its tags.
	Default provider.ProviderContext

	// LookupConcurrency bounds how many lookups may run ahead of the pass. A lookup is dispatched as soon as
	// all of its dependencies are resolved, but its result is only applied when the pass reaches it in
	// topological order. 0 runs every lookup inline.
	LookupConcurrency int

	// OnResolved, if set, is called from the resolving goroutine after each node is resolved.
	OnResolved func(id construct.ResourceId)
}

type (
	lookupFuture struct {
		done  chan struct{}
		value any
		err   error
	}

	resolution struct {
		*Resolver
		g   *ResourceGraph
		log *zap.Logger

		adjacency    map[construct.ResourceId]map[construct.ResourceId]graph.Edge[construct.ResourceId]
		predecessors map[construct.ResourceId]map[construct.ResourceId]graph.Edge[construct.ResourceId]

		contexts map[construct.ResourceId]provider.ProviderContext
		pool     *pond.WorkerPool
		futures  map[construct.ResourceId]*lookupFuture
	}
)

// Resolve resolves every node of `g` in topological order: Provider resources locally, lookups through
// [provider.Lookup] and everything else through [provider.Provisioner]. Only the calling goroutine writes to
// the graph's attribute table. The first error aborts the pass, leaving the remaining nodes pending.
func (r *Resolver) Resolve(ctx context.Context, g *ResourceGraph) error {
	if len(g.Pending()) != g.Len() {
		return ErrAlreadyResolved
	}

	adj, err := g.graph.AdjacencyMap()
	if err != nil {
		return err
	}
	pred, err := g.graph.PredecessorMap()
	if err != nil {
		return err
	}

	res := &resolution{
		Resolver:     r,
		g:            g,
		log:          logging.GetLogger(ctx).Named("engine"),
		adjacency:    adj,
		predecessors: pred,
		contexts:     make(map[construct.ResourceId]provider.ProviderContext),
		futures:      make(map[construct.ResourceId]*lookupFuture),
	}
	if r.LookupConcurrency > 0 && r.Lookup != nil {
		res.pool = pond.New(r.LookupConcurrency, g.Len())
		defer res.pool.StopAndWait()
	}
	// Runs before StopAndWait so in-flight lookups of an aborted pass are cancelled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, id := range g.order {
		res.dispatchIfReady(ctx, id)
	}
	for _, id := range g.order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("resolution aborted before %s: %w", id, err)
		}
		if err := res.resolveNode(ctx, id); err != nil {
			res.log.Error("Resolution aborted", logging.ResourceField(id), zap.Error(err))
			return err
		}
		if r.OnResolved != nil {
			r.OnResolved(id)
		}
		for succ := range res.adjacency[id] {
			res.dispatchIfReady(ctx, succ)
		}
	}
	res.log.Debug("Resolved graph", zap.Int("resources", g.Len()))
	return nil
}

func (res *resolution) resource(id construct.ResourceId) (*construct.Resource, error) {
	return res.g.graph.Vertex(id)
}

func (res *resolution) refValue(ref construct.AttributeRef) (any, error) {
	attr := res.g.Attribute(ref)
	if attr.State != Resolved {
		return nil, &construct.UnresolvedReferenceError{Refs: []construct.AttributeRef{ref}}
	}
	return attr.Value, nil
}

// contextFor returns the provider context of the Provider resource `id` directly depends on.
func (res *resolution) contextFor(id construct.ResourceId) (provider.ProviderContext, error) {
	var found []construct.ResourceId
	for dep := range res.predecessors[id] {
		if dep.Kind == construct.KindProvider {
			found = append(found, dep)
		}
	}
	switch len(found) {
	case 0:
		return res.Default, nil
	case 1:
		pc, ok := res.contexts[found[0]]
		if !ok {
			return provider.ProviderContext{}, fmt.Errorf("provider %s of %s is not resolved", found[0], id)
		}
		return pc, nil
	default:
		return provider.ProviderContext{}, fmt.Errorf("%s: %w", id, ErrMultipleProvider)
	}
}

func (res *resolution) providerContext(r *construct.Resource, props construct.Properties) (provider.ProviderContext, error) {
	region, err := provider.RequiredString(props, "region")
	if err != nil {
		return provider.ProviderContext{}, fmt.Errorf("provider %s: %w", r.ID, err)
	}
	env, err := provider.String(props, "environment")
	if err != nil {
		return provider.ProviderContext{}, fmt.Errorf("provider %s: %w", r.ID, err)
	}
	profile, err := provider.String(props, "profile")
	if err != nil {
		return provider.ProviderContext{}, fmt.Errorf("provider %s: %w", r.ID, err)
	}
	tags, err := provider.Tags(props, "tags")
	if err != nil {
		return provider.ProviderContext{}, fmt.Errorf("provider %s: %w", r.ID, err)
	}
	if env == "" {
		env = res.Default.Environment
	}
	if profile == "" {
		profile = res.Default.Profile
	}
	return provider.ProviderContext{
		Region:      region,
		Environment: env,
		Profile:     profile,
		Tags:        res.Default.MergedTags(tags),
	}, nil
}

// dispatchIfReady starts the lookup for `id` on the pool once every dependency is resolved. Any problem preparing
// the inputs is left for the inline path in [resolution.awaitLookup] to report in order.
func (res *resolution) dispatchIfReady(ctx context.Context, id construct.ResourceId) {
	if res.pool == nil || !id.Kind.IsLookup() {
		return
	}
	if _, dispatched := res.futures[id]; dispatched {
		return
	}
	for dep := range res.predecessors[id] {
		if res.g.State(dep) != Resolved {
			return
		}
	}
	r, err := res.resource(id)
	if err != nil {
		return
	}
	filter, err := r.Properties.ReplaceRefs(res.refValue)
	if err != nil {
		return
	}
	pc, err := res.contextFor(id)
	if err != nil {
		return
	}

	f := &lookupFuture{done: make(chan struct{})}
	res.futures[id] = f
	res.log.Debug("Dispatching lookup", logging.ResourceField(id), logging.RegionField(pc.Region))
	lookupCtx := logging.WithFields(ctx, logging.ResourceField(id))
	res.pool.Submit(func() {
		defer close(f.done)
		f.value, f.err = res.Lookup.Lookup(lookupCtx, id.Kind, filter, pc)
	})
}

func (res *resolution) awaitLookup(ctx context.Context, r *construct.Resource, filter construct.Properties) (any, error) {
	if res.Lookup == nil {
		return nil, fmt.Errorf("no lookup collaborator configured for %s", r.ID)
	}
	var value any
	var err error
	if f, ok := res.futures[r.ID]; ok {
		select {
		case <-f.done:
			value, err = f.value, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		pc, perr := res.contextFor(r.ID)
		if perr != nil {
			return nil, perr
		}
		value, err = res.Lookup.Lookup(logging.WithFields(ctx, logging.ResourceField(r.ID)), r.Kind(), filter, pc)
	}
	if err != nil {
		return nil, &CollaboratorError{Resource: r.ID, Operation: "lookup", Err: err}
	}
	if value == nil {
		return nil, &CollaboratorError{Resource: r.ID, Operation: "lookup", Err: errors.New("no result")}
	}
	return value, nil
}

func (res *resolution) resolveNode(ctx context.Context, id construct.ResourceId) error {
	r, err := res.resource(id)
	if err != nil {
		return err
	}
	props, err := r.Properties.ReplaceRefs(res.refValue)
	if err != nil {
		return fmt.Errorf("could not resolve properties of %s: %w", id, err)
	}

	var outputs provider.Outputs
	switch {
	case id.Kind == construct.KindProvider:
		pc, err := res.providerContext(r, props)
		if err != nil {
			return err
		}
		res.contexts[id] = pc
		outputs = provider.Outputs{construct.AttributeId: id.Name, "region": pc.Region}

	case id.Kind.IsLookup():
		value, err := res.awaitLookup(ctx, r, props)
		if err != nil {
			return err
		}
		outputs = provider.Outputs{construct.AttributeId: value}

	default:
		if res.Provisioner == nil {
			return fmt.Errorf("no provisioner configured for %s", id)
		}
		pc, err := res.contextFor(id)
		if err != nil {
			return err
		}
		outputs, err = res.Provisioner.Provision(ctx, pc, provider.ProvisionRequest{ID: id, Properties: props.Clone()})
		if err != nil {
			return &CollaboratorError{Resource: id, Operation: "provision", Err: err}
		}
		if outputs[construct.AttributeId] == nil {
			return &CollaboratorError{Resource: id, Operation: "provision", Err: errors.New("no identifier returned")}
		}
	}

	if err := res.g.resolve(id, props, outputs); err != nil {
		return err
	}
	res.log.Debug("Resolved resource", logging.ResourceField(id), zap.Any("id", outputs[construct.AttributeId]))
	return nil
}
