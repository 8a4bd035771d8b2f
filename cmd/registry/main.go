package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rayforge/registry/internal/domain/interfaces"
	"github.com/rayforge/registry/internal/external-adapters/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "authorize":
		runAuthorize(ctx, os.Args[2:])
	case "validate":
		runValidate(ctx, os.Args[2:])
	case "submit":
		runSubmit(ctx, os.Args[2:])
	case "list":
		runList(ctx, os.Args[2:])
	case "latest":
		runLatest(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`registry - Package registry aggregation service for Rayforge packages

Usage:
  registry <command> [options]

Commands:
  authorize  Check a repository against the allow-list and print its merge mode
  validate   Validate a release-submission payload without touching the index
  submit     Validate a submission and merge it into the registry index
  list       List packages and versions in the registry index
  latest     Print the latest stable version of a package
  verify     Verify the SHA256 checksum of a downloaded asset

Use "registry <command> --help" for more information about a command.`)
}

// newLogger builds the process logger. REGISTRY_LOG_LEVEL selects the
// verbosity, defaulting to info.
func newLogger() interfaces.Logger {
	return logging.New("registry", os.Getenv("REGISTRY_LOG_LEVEL"))
}
