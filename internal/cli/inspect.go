package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	pyext "github.com/contriboss/python-extension-go"
)

func newMetadataCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "print the core metadata (PKG-INFO) for the distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(opts)
			if err != nil {
				return err
			}
			dist, err := pyext.LoadDistribution(config)
			if err != nil {
				return err
			}
			return dist.Metadata.WriteCoreMetadata(cmd.OutOrStdout())
		},
	}
}

func newRequirementsCmd(opts *rootOptions) *cobra.Command {
	var extra string
	var listExtras bool

	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "print install requirements, or one extra's requirements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !listExtras && extra == "" {
				for _, req := range pyext.InstallRequires(config.DependencySelector) {
					fmt.Fprintln(out, req)
				}
				return nil
			}

			extras, err := pyext.ExtrasRequire(config.ProjectDir)
			if err != nil {
				return err
			}

			if listExtras {
				names := make([]string, 0, len(extras))
				for name := range extras {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			reqs, ok := extras[extra]
			if !ok {
				return fmt.Errorf("unknown extra %q", extra)
			}
			for _, req := range reqs {
				fmt.Fprintln(out, req)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&extra, "extra", "e", "", "print the requirements of this extra")
	cmd.Flags().BoolVar(&listExtras, "list-extras", false, "list the extra names")
	return cmd
}

// newCommandsCmd lists the registered setup commands and, for those that
// shell out, whether their tools are on PATH.
func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "list setup commands and check their required tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, c := range pyext.NewRegistry().ListCommands() {
				checker, ok := c.(pyext.ToolChecker)
				if !ok {
					fmt.Fprintln(out, c.Name())
					continue
				}
				if err := checker.CheckTools(); err != nil {
					fmt.Fprintf(out, "%s\tmissing: %v\n", c.Name(), err)
					continue
				}
				fmt.Fprintf(out, "%s\tok\n", c.Name())
			}
			return nil
		},
	}
}
