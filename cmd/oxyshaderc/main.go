// Command oxyshaderc compiles shader assets into per-backend GLSL sources.
//
// Usage:
//
//	oxyshaderc compile [files...]   emit every pass for the configured backends
//	oxyshaderc layout [files...]    print the std140 layout of every property group as YAML
//	oxyshaderc fmt [files...]       print assets in canonical form
//	oxyshaderc watch                compile, then recompile assets as they change
//
// Settings are read from oxyshader.toml in the working directory, or the file named by
// --config, and individual flags override the file.
package main

import (
	"fmt"
	"os"
)

// Version indicates the current build version.
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
