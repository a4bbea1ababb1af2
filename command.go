package pyext

import "context"

// Command is one packaging step, such as "build" or "bdist_wheel".
//
// # Command Lifecycle
//
//  1. Finalize() - resolve options against the Setup; fail fast on missing tools
//  2. Run() - perform the step
//
// Setup.RunCommand drives both phases and ensures a command runs at most
// once per Setup, so "install" and "bdist_wheel" share a single "build".
//
// # Example Implementation
//
//	type LintCommand struct{}
//
//	func (c *LintCommand) Name() string { return "lint" }
//
//	func (c *LintCommand) Finalize(ctx context.Context, s *Setup) error {
//	    return nil
//	}
//
//	func (c *LintCommand) Run(ctx context.Context, s *Setup) error {
//	    _, err := s.Runner.Run(ctx, Invocation{Path: "ruff", Args: []string{"check"}})
//	    return err
//	}
type Command interface {
	// Name returns the registered command name.
	Name() string

	// Finalize resolves options before Run.
	Finalize(ctx context.Context, s *Setup) error

	// Run performs the command.
	Run(ctx context.Context, s *Setup) error
}

// SubCommand is an entry in a command's ordered sub-command list. The
// sub-command runs only if Predicate reports true.
type SubCommand struct {
	Name      string
	Predicate func(s *Setup) bool
}
