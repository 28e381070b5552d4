package main

import (
	"github.com/klothoplatform/stackgraph/pkg/infra/pulumi"
	kio "github.com/klothoplatform/stackgraph/pkg/io"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateConfig struct {
	outDir string
}

func newGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the stack as a Pulumi TypeScript program",
		Args:  cobra.NoArgs,
		RunE:  generate,
	}
	flags := generateCmd.Flags()
	flags.StringVarP(&generateConfig.outDir, "output", "o", "pulumi", "Directory to write the program to")
	return generateCmd
}

func generate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.GetLogger(ctx)

	stack, run, err := declareStack(ctx)
	if err != nil {
		return err
	}
	g, err := run.Assemble()
	if err != nil {
		return errors.Wrap(err, "could not assemble stack")
	}

	plugin := pulumi.Plugin{Config: pulumi.Config{Project: stack.Project, Stack: stack.Stack}}
	files, err := plugin.Render(g, run.Exports())
	if err != nil {
		return errors.Wrapf(err, "could not render %s program", plugin.Name())
	}
	n, err := kio.OutputTo(files, generateConfig.outDir)
	if err != nil {
		return errors.Wrapf(err, "could not write to '%s'", generateConfig.outDir)
	}
	log.Info("Wrote program", zap.String("dir", generateConfig.outDir), zap.Int("files", len(files)), zap.Int64("bytes", n))
	return nil
}
