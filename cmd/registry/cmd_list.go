package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	yamladapters "github.com/rayforge/registry/internal/external-adapters/yaml"
)

func runList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var (
		registryPath = fs.String("registry", "registry.yaml", "Path to the registry index file")
		showVersions = fs.Bool("versions", false, "List every recorded version per package")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry list [options]

List the packages in the registry index.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  registry list
  registry list --versions
  registry list --registry /srv/registry/registry.yaml
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	index, err := yamladapters.NewIndexRepository(*registryPath).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry index: %v\n", err)
		os.Exit(1)
	}

	ids := index.PackageIDs()
	if len(ids) == 0 {
		fmt.Println("Registry is empty")
		return
	}

	fmt.Printf("%d package(s):\n\n", len(ids))
	for _, id := range ids {
		entry := index.Packages[id]
		fmt.Printf("  %s  %s  (%s)\n", id, entry.LatestStable, entry.Repository)
		if *showVersions {
			for _, rec := range entry.Versions {
				fmt.Printf("      %s\n", rec.Version)
			}
		}
	}
}
