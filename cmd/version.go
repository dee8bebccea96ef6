package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Version returns the `version` command, printing the vcs revision the binary was built from.
func Version(name string) *cobra.Command {
	name = strings.TrimSpace(name)

	prefix, short := "", "Print version"
	if name != "" {
		prefix, short = name+" ", "Print "+name+" version"
	}

	return &cobra.Command{
		Use:                   "version",
		Short:                 short,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			build := readBuild()
			fmt.Fprintf(cmd.OutOrStdout(), "%sversion: %s from %s\n", prefix, build.revision, build.time)
		},
	}
}

type build struct {
	revision string
	time     string
}

// readBuild reads the vcs stamp of the binary.
// Builds from a dirty tree and binaries without a stamp, like `go run` and `go test`, report @latest.
func readBuild() build {
	latest := build{revision: "@latest", time: time.Now().UTC().Format(time.RFC3339)}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return latest
	}

	var b build

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.revision = s.Value
		case "vcs.time":
			b.time = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				return latest
			}
		}
	}

	if b.revision == "" {
		return latest
	}

	return b
}
