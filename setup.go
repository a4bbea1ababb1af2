package pyext

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Setup ties a configuration and a distribution to a set of commands and
// runs them. It corresponds to a single packaging invocation.
type Setup struct {
	Config       *Config
	Distribution *Distribution
	Registry     *Registry
	Runner       Runner
	Logger       *slog.Logger
	Result       *BuildResult

	ran map[string]bool
}

// NewSetup creates a Setup with the standard registry, an ExecRunner and
// the default logger.
func NewSetup(config *Config, dist *Distribution) *Setup {
	return &Setup{
		Config:       config,
		Distribution: dist,
		Registry:     NewRegistry(),
		Runner:       &ExecRunner{},
		Logger:       slog.Default(),
		Result:       &BuildResult{},
		ran:          make(map[string]bool),
	}
}

// RunCommand finalizes and runs the named command unless it already ran in
// this Setup. The first error aborts; nothing is retried.
func (s *Setup) RunCommand(ctx context.Context, name string) error {
	if s.ran == nil {
		s.ran = make(map[string]bool)
	}
	if s.ran[name] {
		s.Logger.Debug("command.skip", "command", name, "reason", "already ran")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	cmd, err := s.Registry.CommandFor(name)
	if err != nil {
		return err
	}

	s.Logger.Debug("command.finalize", "command", name)
	if err := cmd.Finalize(ctx, s); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	s.Logger.Info("command.start", "command", name)
	if err := cmd.Run(ctx, s); err != nil {
		s.Logger.Error("command.failed", "command", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}

	s.ran[name] = true
	s.Result.Commands = append(s.Result.Commands, name)
	s.Logger.Info("command.done", "command", name)
	return nil
}

// HasRun reports whether the named command completed in this Setup.
func (s *Setup) HasRun(name string) bool {
	return s.ran[name]
}

// runSubCommands runs each sub-command whose predicate holds, in order.
func (s *Setup) runSubCommands(ctx context.Context, subs []SubCommand) error {
	for _, sub := range subs {
		if sub.Predicate != nil && !sub.Predicate(s) {
			s.Logger.Debug("command.skip", "command", sub.Name, "reason", "predicate false")
			continue
		}
		if err := s.RunCommand(ctx, sub.Name); err != nil {
			return err
		}
	}
	return nil
}

// LoadDistribution reads the companion files under the project root and
// assembles the distribution declaration: version module, readme, docs
// requirements and the package tree.
func LoadDistribution(config *Config) (*Distribution, error) {
	root := config.ProjectDir

	version, err := ReadVersion(filepath.Join(root, filepath.FromSlash(VersionFile)))
	if err != nil {
		return nil, err
	}

	longDescription, err := ReadLongDescription(filepath.Join(root, ReadmeFile))
	if err != nil {
		return nil, err
	}

	extras, err := ExtrasRequire(root)
	if err != nil {
		return nil, err
	}

	packages, err := FindPackages(root)
	if err != nil {
		return nil, fmt.Errorf("find packages: %w", err)
	}

	meta := DataValidationMetadata(version, longDescription)
	meta.RequiresDist = InstallRequires(config.DependencySelector)
	meta.ProvidesExtra = extras

	return &Distribution{
		Metadata: meta,
		Packages: packages,
		PackageData: map[string][]string{
			"": {"*.lib", "*.pyd", "*.so"},
		},
		IncludePackageData: true,
		ZipSafe:            false,
	}, nil
}
