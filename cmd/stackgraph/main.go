package main

import (
	"os"

	"github.com/klothoplatform/stackgraph/pkg/cli"
	clicommon "github.com/klothoplatform/stackgraph/pkg/cli_common"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "0.0.0-local"

var commonCfg struct {
	clicommon.CommonConfig
	stackFile string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stackgraph",
		Short:         "Declare a stack once, fan it out over regions and provision it in dependency order",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	clicommon.SetupRoot(root, &commonCfg.CommonConfig)
	flags := root.PersistentFlags()
	flags.StringVarP(&commonCfg.stackFile, "stack", "c", "stack.yaml", "Stack file (.yaml, .toml or .json)")

	root.AddCommand(newPlanCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newGenerateCmd())
	return root
}

func main() {
	// Errors raised before the root's pre-run (eg. flag parsing) still need a logger.
	if logger, err := (logging.LogOpts{}).NewLogger(); err == nil {
		zap.ReplaceGlobals(logger)
	}

	err := newRootCmd().Execute()
	if err != nil {
		cli.ErrorHandler{
			InternalDebug: commonCfg.Verbose > 1,
			Verbose:       commonCfg.Verbose > 0,
			PostPrintHook: func() {
				zap.L().Sync() //nolint:errcheck
			},
		}.PrintErr(err)
		os.Exit(1)
	}
	if commonCfg.Tracker.HadErrors.Load() {
		os.Exit(1)
	}
}
