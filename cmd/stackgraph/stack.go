package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/klothoplatform/stackgraph/pkg/build"
	"github.com/klothoplatform/stackgraph/pkg/config"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/engine"
	"github.com/klothoplatform/stackgraph/pkg/export"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/klothoplatform/stackgraph/pkg/provider"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// declareStack reads the stack file and declares its blueprint in every region of a new run.
func declareStack(ctx context.Context) (*config.Stack, *build.Run, error) {
	log := logging.GetLogger(ctx)

	stack, err := config.ReadStack(commonCfg.stackFile)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not read stack '%s'", commonCfg.stackFile)
	}

	run := build.NewRun()
	if err := stack.Blueprint().Declare(run, stack.Regions); err != nil {
		return nil, nil, errors.Wrapf(err, "could not declare stack '%s'", stack.Project)
	}
	log.Debug("Declared stack",
		zap.String("project", stack.Project),
		zap.Int("regions", len(stack.Regions)),
		zap.Int("resources", run.Declarations().Len()),
	)
	return stack, run, nil
}

// resolveStack resolves the run against `collaborators` and returns its export table. `onResolved` may be nil.
func resolveStack(
	ctx context.Context,
	stack *config.Stack,
	run *build.Run,
	collaborators provider.Collaborators,
	onResolved func(construct.ResourceId),
) (*export.Table, error) {
	resolver := &engine.Resolver{
		Lookup:            collaborators,
		Provisioner:       collaborators,
		Default:           stack.ProviderDefaults(),
		LookupConcurrency: stack.Concurrency(),
		OnResolved:        onResolved,
	}
	if err := run.Resolve(ctx, resolver); err != nil {
		return nil, errors.Wrap(err, "could not resolve stack")
	}
	table, err := run.Finalize()
	if err != nil {
		return nil, errors.Wrap(err, "could not finalize exports")
	}
	return table, nil
}

// writeOutput writes `v` as YAML (or JSON) to `path`, or stdout when `path` is empty.
func writeOutput(path string, v any, asJson bool) error {
	if path == "" {
		return encodeOutput(os.Stdout, v, asJson)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create output '%s'", path)
	}
	return errors.Wrapf(writeAndClose(f, v, asJson), "could not write output '%s'", path)
}

// writeAndClose always closes `w`, and reports its close error alongside any encoding error.
func writeAndClose(w io.WriteCloser, v any, asJson bool) error {
	err := encodeOutput(w, v, asJson)
	return multierr.Append(err, w.Close())
}

func encodeOutput(w io.Writer, v any, asJson bool) error {
	if asJson {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// newProgress shows a bar on an interactive stderr, and nothing otherwise (including with --json-log).
func newProgress(max int, description string) *progressbar.ProgressBar {
	if commonCfg.JsonLog || !term.IsTerminal(int(os.Stderr.Fd())) {
		return progressbar.DefaultSilent(int64(max), description)
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
