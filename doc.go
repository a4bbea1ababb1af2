// Package pyext packages a Python distribution whose native extensions and
// protocol message bindings are produced by Bazel.
//
// It plays the role of the package's setup script: a native build step runs
// ahead of the standard build steps, the distribution is always treated as
// platform-specific, and the dependency list is assembled with constraints
// chosen by the TFX_DEPENDENCY_SELECTOR environment variable.
//
// # Basic Usage
//
//	config, err := pyext.LoadConfig("/path/to/data-validation")
//	if err != nil {
//	    return err
//	}
//
//	dist, err := pyext.LoadDistribution(config)
//	if err != nil {
//	    return err
//	}
//
//	setup := pyext.NewSetup(config, dist)
//	if err := setup.RunCommand(ctx, "bdist_wheel"); err != nil {
//	    return err
//	}
//	fmt.Println(setup.Result.Wheel)
//
// # Architecture
//
// Commands are looked up in a Registry and run through a Setup:
//
//	Registry
//	├── build
//	│   ├── bazel_build   (always)
//	│   ├── build_py      (packages declared)
//	│   ├── build_clib    (C libraries declared)
//	│   ├── build_ext     (always, extensions are reported present)
//	│   └── build_scripts (scripts declared)
//	├── install           (install_lib redirected to platlib)
//	└── bdist_wheel       (Root-Is-Purelib: false)
//
// Each command is finalized before it runs and runs at most once per Setup.
// Any failure aborts the whole operation; packaging is all-or-nothing.
//
// # Dependency Selection
//
//	TFX_DEPENDENCY_SELECTOR=UNCONSTRAINED  no version constraint
//	TFX_DEPENDENCY_SELECTOR=NIGHTLY        nightly pre-releases
//	TFX_DEPENDENCY_SELECTOR=GIT_MASTER     direct reference to upstream master
//	(anything else)                        the pinned default range
//
// # Platform Support
//
// Linux, macOS and Windows wheels. On macOS Bazel is passed
// --macos_minimum_os=10.14.
package pyext
