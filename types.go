package pyext

// BuildResult accumulates what a packaging run produced.
//
// Paths in Generated and Built are relative to ProjectDir and BuildLib
// respectively, with forward slashes. Installed is absolute.
type BuildResult struct {
	Commands  []string // Commands that ran, in order
	Output    []string // Lines of output from external tools
	Generated []string // Artifacts the native build placed in the source tree
	Built     []string // Files staged under build/lib
	Installed []string // Files copied into the install directory
	Wheel     string   // Path to the wheel written by bdist_wheel
}
