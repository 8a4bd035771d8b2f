package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	yamladapters "github.com/rayforge/registry/internal/external-adapters/yaml"
)

func runLatest(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("latest", flag.ExitOnError)
	var (
		registryPath = fs.String("registry", "registry.yaml", "Path to the registry index file")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry latest <package> [options]

Print the latest stable version of a package to stdout.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  registry latest laser-profiles
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: package name is required\n\n")
		fs.Usage()
		os.Exit(2)
	}

	id := fs.Arg(0)

	index, err := yamladapters.NewIndexRepository(*registryPath).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry index: %v\n", err)
		os.Exit(1)
	}

	entry, ok := index.Package(id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: package %q not found in registry\n", id)
		os.Exit(1)
	}

	fmt.Println(entry.LatestStable)
}
