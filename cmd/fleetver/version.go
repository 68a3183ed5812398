package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata injected via ldflags. Empty values fall back to what the
// Go toolchain recorded in the binary.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo is the resolved build metadata of the running binary.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// resolveBuildInfo merges the ldflags values with what
// debug.ReadBuildInfo recorded, preferring ldflags. Fields that cannot be
// resolved degrade to stable fallbacks so the output shape never changes.
func resolveBuildInfo() buildInfo {
	info := buildInfo{version: version, commit: commit, date: date}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.version == "" {
			info.version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.commit == "" {
					info.commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if info.date == "" {
					info.date = s.Value
				}
			}
		}
	}

	if info.version == "" {
		info.version = "(devel)"
	}
	if info.commit == "" {
		info.commit = "unknown"
	}
	if info.date == "" {
		info.date = "unknown"
	}
	return info
}

// shortRevision abbreviates a VCS revision to seven characters.
func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of fleetver.`,
		Run: func(cmd *cobra.Command, _ []string) {
			b := resolveBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "fleetver %s (commit %s, built %s)\n",
				b.version, b.commit, b.date)
		},
	}
}
