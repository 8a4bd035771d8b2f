package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	yamladapters "github.com/rayforge/registry/internal/external-adapters/yaml"
)

func runAuthorize(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("authorize", flag.ExitOnError)
	var (
		allowlistPath = fs.String("allowlist", "allowed-repositories.yaml", "Path to the allow-list file")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry authorize <owner/repo> [options]

Check whether a repository is permitted to publish. On success the merge
mode (direct or pr) is printed to stdout for the CI workflow to capture.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Exit Codes:
  0  Repository is allow-listed (mode printed to stdout)
  1  Repository is not allow-listed, or the allow-list is unreadable
  2  Usage error

Examples:
  registry authorize acme/laser-profiles
  registry authorize acme/laser-profiles --allowlist config/allowed-repositories.yaml
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: repository (owner/repo) is required\n\n")
		fs.Usage()
		os.Exit(2)
	}

	repo := fs.Arg(0)

	allowRepo := yamladapters.NewAllowlistRepository(*allowlistPath, newLogger())
	allowlist, err := allowRepo.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authorization FAILED: %v\n", err)
		os.Exit(1)
	}

	entry, ok := allowlist.Lookup(repo)
	if !ok {
		fmt.Fprintf(os.Stderr, "Authorization FAILED: repository %q is not on the allowlist\n", repo)
		os.Exit(1)
	}

	fmt.Println(entry.Mode)
}
