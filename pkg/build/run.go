// Package build drives a single build run: declare resources and exports, assemble the graph, resolve it
// against the collaborators and finalize the export table.
package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/engine"
	"github.com/klothoplatform/stackgraph/pkg/export"
	"github.com/klothoplatform/stackgraph/pkg/fanout"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"go.uber.org/zap"
)

type State int

const (
	Empty State = iota
	Assembling
	Resolving
	Finalized
	// Failed is entered on the first error. Like Finalized it is terminal.
	Failed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Assembling:
		return "assembling"
	case Resolving:
		return "resolving"
	case Finalized:
		return "finalized"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == Finalized || s == Failed
}

var ErrInvalidTransition = errors.New("invalid build transition")

// InvalidTransitionError is returned when an operation is not allowed in the run's current state. It does
// not change the state of the run.
type InvalidTransitionError struct {
	Operation string
	From      State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a build run that is %s", e.Operation, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Run is one build run. It owns its declarations, exports, graph and (once finalized) its export table.
// A Run is not safe for concurrent use.
type Run struct {
	state   State
	decls   *construct.Declarations
	exports export.Exporter
	graph   *engine.ResourceGraph
	table   *export.Table
	err     error
}

func NewRun() *Run {
	return &Run{decls: construct.NewDeclarations()}
}

func (r *Run) State() State {
	return r.state
}

// Err returns the error that moved the run to Failed.
func (r *Run) Err() error {
	return r.err
}

func (r *Run) fail(err error) error {
	r.state = Failed
	r.err = err
	r.graph = nil
	r.table = nil
	return err
}

func (r *Run) expect(op string, allowed ...State) error {
	for _, s := range allowed {
		if r.state == s {
			return nil
		}
	}
	return &InvalidTransitionError{Operation: op, From: r.state}
}

func (r *Run) declaring(op string) error {
	if err := r.expect(op, Empty, Assembling); err != nil {
		return err
	}
	r.state = Assembling
	// Anything declared after an Assemble invalidates it.
	r.graph = nil
	return nil
}

// Declare registers a resource.
func (r *Run) Declare(kind construct.Kind, name string, props construct.Properties, dependsOn ...construct.ResourceId) (*construct.Resource, error) {
	if err := r.declaring("declare"); err != nil {
		return nil, err
	}
	res, err := r.decls.Create(kind, name, props, dependsOn...)
	if err != nil {
		return nil, r.fail(err)
	}
	return res, nil
}

// DeclareAll registers every resource of `decls`, in order.
func (r *Run) DeclareAll(decls *construct.Declarations) error {
	if err := r.declaring("declare"); err != nil {
		return err
	}
	if err := r.decls.Merge(decls); err != nil {
		return r.fail(err)
	}
	return nil
}

// Expand fans `template` out over `regions` and registers the resulting resources.
func (r *Run) Expand(template fanout.Template, regions []fanout.RegionSpec) (*fanout.Expansion, error) {
	if err := r.declaring("expand"); err != nil {
		return nil, err
	}
	exp, err := fanout.Expand(template, regions)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := exp.Merge(r.decls); err != nil {
		return nil, r.fail(err)
	}
	return exp, nil
}

func (r *Run) Export(name string, ref construct.AttributeRef) error {
	if err := r.declaring("export"); err != nil {
		return err
	}
	if err := r.exports.Export(name, ref); err != nil {
		return r.fail(err)
	}
	return nil
}

// Declarations returns the resources declared so far.
func (r *Run) Declarations() *construct.Declarations {
	return r.decls
}

// Exports returns a copy of the export declarations made so far.
func (r *Run) Exports() *export.Exporter {
	return r.exports.Clone()
}

// Assemble builds the graph of everything declared so far. The run stays Assembling.
func (r *Run) Assemble() (*engine.ResourceGraph, error) {
	if err := r.expect("assemble", Assembling); err != nil {
		return nil, err
	}
	if r.graph != nil {
		return r.graph, nil
	}
	g, err := engine.Assemble(r.decls.Resources())
	if err != nil {
		return nil, r.fail(err)
	}
	for _, name := range r.exports.Names() {
		ref, _ := r.exports.Ref(name)
		if _, err := g.Resource(ref.Resource); err != nil {
			return nil, r.fail(fmt.Errorf("export %q: %w", name, &construct.UnknownDependencyError{Dependency: ref.Resource}))
		}
	}
	r.graph = g
	return g, nil
}

// Resolve assembles (if needed) and resolves the graph, moving the run to Resolving.
func (r *Run) Resolve(ctx context.Context, resolver *engine.Resolver) error {
	if err := r.expect("resolve", Assembling); err != nil {
		return err
	}
	log := logging.GetLogger(ctx).Named("build")

	g, err := r.Assemble()
	if err != nil {
		return err
	}
	r.state = Resolving
	log.Debug("Resolving graph", zap.Int("resources", g.Len()), zap.Int("exports", len(r.exports.Names())))
	if err := resolver.Resolve(ctx, g); err != nil {
		return r.fail(err)
	}
	return nil
}

// Finalize builds the export table, moving the run to Finalized.
func (r *Run) Finalize() (*export.Table, error) {
	if err := r.expect("finalize", Resolving); err != nil {
		return nil, err
	}
	table, err := r.exports.Finalize(r.graph)
	if err != nil {
		return nil, r.fail(err)
	}
	r.state = Finalized
	r.table = table
	return table, nil
}

// Graph returns the assembled graph, or nil if the run has not been assembled or has failed.
func (r *Run) Graph() *engine.ResourceGraph {
	return r.graph
}

// Table returns the export table once the run is Finalized.
func (r *Run) Table() (*export.Table, bool) {
	return r.table, r.state == Finalized
}
