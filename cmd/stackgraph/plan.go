package main

import (
	"bytes"
	"os"

	"github.com/fatih/color"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/dot"
	"github.com/klothoplatform/stackgraph/pkg/export"
	"github.com/klothoplatform/stackgraph/pkg/provider/dryrun"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var planConfig struct {
	output string
	dot    string
	svg    string
}

type planOutput struct {
	Graph   construct.YamlGraph `yaml:"graph"`
	Exports *export.Table       `yaml:"exports"`
}

func newPlanCmd() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve the stack without touching any account and print the graph",
		Args:  cobra.NoArgs,
		RunE:  plan,
	}
	flags := planCmd.Flags()
	flags.StringVarP(&planConfig.output, "output", "o", "", "Write the plan to a file instead of stdout")
	flags.StringVar(&planConfig.dot, "dot", "", "Also write the graph in Graphviz DOT to this file")
	flags.StringVar(&planConfig.svg, "svg", "", "Also render the graph to this SVG file (requires 'dot')")
	return planCmd
}

func plan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stack, run, err := declareStack(ctx)
	if err != nil {
		return err
	}
	table, err := resolveStack(ctx, stack, run, dryrun.New(), nil)
	if err != nil {
		return err
	}

	err = writeOutput(planConfig.output, planOutput{
		Graph:   construct.YamlGraph{Graph: run.Graph().Graph()},
		Exports: table,
	}, false)
	if err != nil {
		return err
	}
	if err := writeGraph(cmd, run.Graph().Graph()); err != nil {
		return err
	}
	color.New(color.FgHiGreen).Fprintf(os.Stderr, "Planned %d resources in %d regions (%d exports)\n",
		run.Graph().Len(), len(stack.Regions), table.Len())
	return nil
}

func writeGraph(cmd *cobra.Command, g construct.Graph) error {
	if planConfig.dot == "" && planConfig.svg == "" {
		return nil
	}
	content := new(bytes.Buffer)
	if err := dot.GraphToDot(g, content); err != nil {
		return errors.Wrap(err, "could not render graph")
	}
	if planConfig.dot != "" {
		if err := os.WriteFile(planConfig.dot, content.Bytes(), 0644); err != nil {
			return errors.Wrapf(err, "could not write '%s'", planConfig.dot)
		}
	}
	if planConfig.svg != "" {
		svg, err := dot.ExecPan(cmd.Context(), content)
		if err != nil {
			return errors.Wrap(err, "could not render svg")
		}
		if err := os.WriteFile(planConfig.svg, []byte(svg), 0644); err != nil {
			return errors.Wrapf(err, "could not write '%s'", planConfig.svg)
		}
	}
	return nil
}
