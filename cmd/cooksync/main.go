package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/roach88/cooksync/internal/cli"
)

// Version may be set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func effectiveVersion(v string) string {
	if v != "" && v != "dev" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return v
}

func main() {
	cmd := cli.NewRootCommand()
	cmd.Version = effectiveVersion(Version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
