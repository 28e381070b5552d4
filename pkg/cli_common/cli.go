package clicommon

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/klothoplatform/stackgraph/pkg/closenicely"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommonConfig struct {
	Verbose   LevelledFlag
	JsonLog   bool
	Color     string
	ProfileTo string

	// Tracker records whether the run logged warnings or errors.
	Tracker logging.Tracker
}

func setupProfiling(commonCfg *CommonConfig) (func(), error) {
	if commonCfg.ProfileTo == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(commonCfg.ProfileTo), 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	profileF, err := os.OpenFile(commonCfg.ProfileTo, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(profileF); err != nil {
		closenicely.OrDebug(profileF)
		return nil, fmt.Errorf("failed to start profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		closenicely.OrDebug(profileF)
	}, nil
}

// SetupRoot registers the flags shared by every command and installs the global logger before any of them run.
func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	flags := root.PersistentFlags()
	flags.VarP(&commonCfg.Verbose, "verbose", "v", "Enable verbose logging (repeat for internal debugging)")
	flags.Lookup("verbose").NoOptDefVal = "true"
	flags.BoolVar(&commonCfg.JsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.Color, "color", "auto", "Colour logs: auto, always or never")
	flags.StringVar(&commonCfg.ProfileTo, "profiling", "", "Profile to file")

	profileClose := func() {}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch commonCfg.Color {
		case "always":
			color.NoColor = false
		case "never":
			color.NoColor = true
		case "auto":
		default:
			return fmt.Errorf("invalid --color %q: must be auto, always or never", commonCfg.Color)
		}

		logOpts := logging.LogOpts{
			Verbose: commonCfg.Verbose > 0,
			Color:   commonCfg.Color,
			DefaultLevels: map[string]zapcore.Level{
				"provider.dryrun": zap.WarnLevel,
			},
			Tracker: &commonCfg.Tracker,
		}
		if commonCfg.JsonLog {
			logOpts.Encoding = "json"
		}
		logger, err := logOpts.NewLogger()
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

		profileClose, err = setupProfiling(commonCfg)
		return err
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		zap.L().Sync() //nolint:errcheck

		profileClose()
	}
}
