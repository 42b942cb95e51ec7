// Package misc keeps program identity helpers in one place so build
// information is reported consistently by the CLI and the logs.
package misc

import (
	"runtime/debug"
	"strings"
)

const appName = "sassld"

// set by the linker in release builds
var (
	version = ""
	gitHash = ""
)

// GetAppName returns the program name used in logs, temp files and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version. When it was not burned in at link
// time the module version from build info is used instead.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "devel"
}

// GetGitHash returns abbreviated revision the program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}

// GetDirty reports whether the working tree had local modifications at
// build time.
func GetDirty() bool {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.modified" {
				return strings.EqualFold(s.Value, "true")
			}
		}
	}
	return false
}
