package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rayforge/registry/internal/domain/services"
	yamladapters "github.com/rayforge/registry/internal/external-adapters/yaml"
)

func runValidate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		allowlistPath = fs.String("allowlist", "allowed-repositories.yaml", "Path to the allow-list file")
		registryPath  = fs.String("registry", "registry.yaml", "Path to the registry index file")
		expectedName  = fs.String("name", "", "Expected manifest name (catches copy-paste mistakes)")
		manifestOnly  = fs.Bool("manifest-only", false, "Check manifest schema only (skip allow-list and version checks)")
		quiet         = fs.Bool("quiet", false, "Only output errors (exit code indicates success/failure)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry validate <payload.yaml> [options]

Validate a release-submission payload against the allow-list and the
current registry index. The index is not modified.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Exit Codes:
  0  Submission is valid
  1  Validation failed
  2  Usage error or system error

Examples:
  registry validate payload.yaml
  registry validate payload.yaml --manifest-only
  registry validate payload.yaml --name "Laser Profiles"
  registry validate payload.yaml --quiet
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: payload file is required\n\n")
		fs.Usage()
		os.Exit(2)
	}

	if err := executeValidate(ctx, fs.Arg(0), *allowlistPath, *registryPath, *expectedName, *manifestOnly, *quiet); err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func executeValidate(ctx context.Context, payloadPath, allowlistPath, registryPath, expectedName string, manifestOnly, quiet bool) error {
	sub, err := yamladapters.NewPayloadParser().ParseFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	validator := services.NewValidatorService()

	if v := validator.ValidateExpectedName(&sub.Manifest, expectedName); !v.Accepted() {
		return v.Err()
	}

	if manifestOnly {
		if v := validator.ValidateManifest(&sub.Manifest); !v.Accepted() {
			return v.Err()
		}
		if !quiet {
			fmt.Println("OK: manifest looks good")
		}
		return nil
	}

	log := newLogger()
	allowlist, err := yamladapters.NewAllowlistRepository(allowlistPath, log).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load allowlist: %w", err)
	}

	index, err := yamladapters.NewIndexRepository(registryPath).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry index: %w", err)
	}

	if v := validator.ValidateSubmission(sub, allowlist, index); !v.Accepted() {
		return v.Err()
	}

	if !quiet {
		fmt.Printf("OK: %s@%s is valid\n", sub.PackageID(), sub.Tag)
	}
	return nil
}
