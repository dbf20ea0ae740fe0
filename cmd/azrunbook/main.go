// Package main is the entry point for the azrunbook CLI.
//
// azrunbook provisions a Linux VM on Azure with a persistent data disk,
// swap on the resource disk and an Azure Files share, then copies input
// data onto the disk. Every step is recorded in a state file so an
// interrupted run resumes where it stopped.
//
// Commands: init, validate, plan, apply, status, reset, deallocate.
//
// For detailed usage information, run:
//
//	azrunbook --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/azrunbook/cmd/azrunbook/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
