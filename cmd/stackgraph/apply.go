package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/provider/aws"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var applyConfig struct {
	output string
	json   bool
}

func newApplyCmd() *cobra.Command {
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision the stack in every region and print its exports",
		Args:  cobra.NoArgs,
		RunE:  apply,
	}
	flags := applyCmd.Flags()
	flags.StringVarP(&applyConfig.output, "output", "o", "", "Write the exports to a file instead of stdout")
	flags.BoolVar(&applyConfig.json, "json", false, "Print the exports as JSON")
	return applyCmd
}

func apply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stack, run, err := declareStack(ctx)
	if err != nil {
		return err
	}
	g, err := run.Assemble()
	if err != nil {
		return errors.Wrap(err, "could not assemble stack")
	}

	bar := newProgress(g.Len(), "Provisioning")
	table, err := resolveStack(ctx, stack, run, aws.New(), func(construct.ResourceId) {
		bar.Add(1) //nolint:errcheck
	})
	bar.Finish() //nolint:errcheck
	if err != nil {
		return err
	}

	if err := writeOutput(applyConfig.output, table, applyConfig.json); err != nil {
		return err
	}
	color.New(color.FgHiGreen).Fprintf(os.Stderr, "Provisioned %d resources in %d regions\n",
		run.Graph().Len(), len(stack.Regions))
	return nil
}
