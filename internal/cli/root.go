package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	pyext "github.com/contriboss/python-extension-go"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

type rootOptions struct {
	projectDir  string
	verbose     bool
	prefix      string
	distDir     string
	platformTag string
	python      string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "pyext-setup",
		Short:        "Build and package a Python distribution with Bazel-built extensions",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.projectDir, "project-dir", "C", ".", "project root containing the Bazel WORKSPACE")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging and streamed tool output")
	flags.StringVar(&opts.python, "python", "", "python interpreter passed to Bazel as PYTHON_BIN_PATH")

	cmd.AddCommand(
		newSetupCommand(opts, "build", "bazel_build then the standard build steps"),
		newSetupCommand(opts, "bazel-build", "only the Bazel native build step"),
		newInstallCmd(opts),
		newWheelCmd(opts),
		newMetadataCmd(opts),
		newRequirementsCmd(opts),
		newCommandsCmd(),
	)

	return cmd
}

// newSetupCommand maps a dashed CLI name onto a registered command.
func newSetupCommand(opts *rootOptions, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetupCommand(cmd, opts, commandName(use))
		},
	}
}

func newInstallCmd(opts *rootOptions) *cobra.Command {
	cmd := newSetupCommand(opts, "install", "build and install into the platform-specific site-packages")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "installation prefix")
	return cmd
}

func newWheelCmd(opts *rootOptions) *cobra.Command {
	cmd := newSetupCommand(opts, "bdist-wheel", "build a platform-specific wheel")
	cmd.Flags().StringVarP(&opts.distDir, "dist-dir", "d", "", "directory for the wheel")
	cmd.Flags().StringVar(&opts.platformTag, "plat-name", "", "override the wheel platform tag")
	return cmd
}

func commandName(use string) string {
	switch use {
	case "bazel-build":
		return "bazel_build"
	case "bdist-wheel":
		return "bdist_wheel"
	default:
		return use
	}
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// isTerminal reports whether the command's stderr is an interactive terminal.
// Tool output is streamed live there even without --verbose.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func loadConfig(opts *rootOptions) (*pyext.Config, error) {
	config, err := pyext.LoadConfig(opts.projectDir)
	if err != nil {
		return nil, err
	}

	if opts.python != "" {
		config.PythonPath = opts.python
	}
	if opts.prefix != "" {
		config.Prefix = opts.prefix
	}
	if opts.distDir != "" {
		config.DistDir = opts.distDir
	}
	if opts.platformTag != "" {
		config.PlatformTag = opts.platformTag
	}
	if opts.verbose {
		config.Verbose = true
	}
	return config, nil
}

func runSetupCommand(cmd *cobra.Command, opts *rootOptions, name string) error {
	config, err := loadConfig(opts)
	if err != nil {
		return err
	}

	dist, err := pyext.LoadDistribution(config)
	if err != nil {
		return err
	}

	setup := pyext.NewSetup(config, dist)
	setup.Logger = newLogger(cmd, config.Verbose)
	if config.Verbose || isTerminal(cmd) {
		setup.Runner = &pyext.ExecRunner{Stream: cmd.ErrOrStderr()}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := setup.RunCommand(ctx, name); err != nil {
		return err
	}

	if setup.Result.Wheel != "" {
		fmt.Fprintln(cmd.OutOrStdout(), setup.Result.Wheel)
	}
	return nil
}
