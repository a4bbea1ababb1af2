package pyext

import "fmt"

// Registry maps command names to implementations.
//
// # Usage
//
// Create a registry with all standard commands:
//
//	registry := pyext.NewRegistry()
//
// Or replace a command before use:
//
//	registry.Register(&MyBuildPy{})
//
// Registering a name that already exists replaces the earlier command,
// keeping its position.
//
// # Thread Safety
//
// Registry is NOT thread-safe for registration. Register all commands before
// handing the registry to a Setup.
type Registry struct {
	commands []Command
}

// NewRegistry creates a registry with the standard commands registered:
//  1. build - native build followed by the standard build steps
//  2. bazel_build - Bazel extension and protocol binding generation
//  3. build_py, build_clib, build_ext, build_scripts
//  4. install - install into the platform-specific site-packages
//  5. bdist_wheel - platform-tagged wheel archive
func NewRegistry() *Registry {
	registry := &Registry{}

	registry.Register(&BuildCommand{})
	registry.Register(&BazelBuildCommand{})
	registry.Register(&BuildPyCommand{})
	registry.Register(&BuildClibCommand{})
	registry.Register(&BuildExtCommand{})
	registry.Register(&BuildScriptsCommand{})
	registry.Register(&InstallCommand{})
	registry.Register(&WheelCommand{})

	return registry
}

// Register adds a command, replacing any command with the same name.
func (r *Registry) Register(cmd Command) {
	for i, existing := range r.commands {
		if existing.Name() == cmd.Name() {
			r.commands[i] = cmd
			return
		}
	}
	r.commands = append(r.commands, cmd)
}

// CommandFor returns the command registered under name.
func (r *Registry) CommandFor(name string) (Command, error) {
	for _, cmd := range r.commands {
		if cmd.Name() == name {
			return cmd, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// ListCommands returns a copy of all registered commands.
func (r *Registry) ListCommands() []Command {
	return append([]Command{}, r.commands...)
}
