package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rayforge/registry/internal/domain-adapters/gateways"
	orchestrators "github.com/rayforge/registry/internal/domain-orchestrators"
	"github.com/rayforge/registry/internal/domain/services"
	"github.com/rayforge/registry/internal/external-adapters/gpg"
	yamladapters "github.com/rayforge/registry/internal/external-adapters/yaml"
)

func runSubmit(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var (
		allowlistPath = fs.String("allowlist", "allowed-repositories.yaml", "Path to the allow-list file")
		registryPath  = fs.String("registry", "registry.yaml", "Path to the registry index file")
		signaturePath = fs.String("signature", "", "Detached GPG signature over the payload file")
		keyringPath   = fs.String("keyring", os.Getenv("REGISTRY_GPG_KEYRING"), "Publisher public keys for signature verification")
		probeAssets   = fs.Bool("probe-assets", false, "Check that declared asset URLs are reachable")
		checkTag      = fs.Bool("check-tag", false, "Check that the release tag exists on the source repository")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry submit <payload.yaml> [options]

Run the full publishing pipeline for one submission: validate it against
the allow-list and the current index, merge the release, and persist the
updated index atomically. A rejected submission leaves the index untouched.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  GITHUB_TOKEN          Token for --check-tag against private repositories
  REGISTRY_GPG_KEYRING  Default keyring path for --signature

Exit Codes:
  0  Release merged (or already present)
  1  Submission rejected or persistence failed
  2  Usage error or system error

Examples:
  registry submit payload.yaml
  registry submit payload.yaml --probe-assets --check-tag
  registry submit payload.yaml --signature payload.yaml.asc --keyring publishers.asc
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

	opts := submitOptions{
		payloadPath:   fs.Arg(0),
		allowlistPath: *allowlistPath,
		registryPath:  *registryPath,
		signaturePath: *signaturePath,
		keyringPath:   *keyringPath,
		probeAssets:   *probeAssets,
		checkTag:      *checkTag,
	}

	if err := executeSubmit(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type submitOptions struct {
	payloadPath   string
	allowlistPath string
	registryPath  string
	signaturePath string
	keyringPath   string
	probeAssets   bool
	checkTag      bool
}

func executeSubmit(ctx context.Context, opts submitOptions) error {
	log := newLogger()

	payload, err := os.ReadFile(opts.payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	// Signature check happens before anything else: an unsigned or
	// mis-signed payload is not worth parsing.
	if opts.signaturePath != "" {
		if opts.keyringPath == "" {
			return fmt.Errorf("--signature requires a keyring (--keyring or REGISTRY_GPG_KEYRING)")
		}

		verifier := gpg.NewVerifier()
		if err := verifier.ImportKeyFromFile(opts.keyringPath); err != nil {
			return fmt.Errorf("failed to import keyring: %w", err)
		}

		signature, err := os.ReadFile(opts.signaturePath)
		if err != nil {
			return fmt.Errorf("failed to read signature: %w", err)
		}

		if err := verifier.VerifyDetached(ctx, payload, signature); err != nil {
			return err
		}
	}

	sub, err := yamladapters.NewPayloadParser().Parse(payload)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	orchestrator := orchestrators.NewSubmissionOrchestrator(
		services.NewValidatorService(),
		services.NewIndexBuilderService(),
		yamladapters.NewAllowlistRepository(opts.allowlistPath, log),
		yamladapters.NewIndexRepository(opts.registryPath),
		log,
	)
	if opts.probeAssets {
		orchestrator.WithAssetProber(gateways.NewAssetProber())
	}
	if opts.checkTag {
		orchestrator.WithReleaseGateway(gateways.NewHTTPReleaseGateway(os.Getenv("GITHUB_TOKEN")))
	}

	result, err := orchestrator.Submit(ctx, sub, orchestrators.SubmitOptions{
		ProbeAssets: opts.probeAssets,
		CheckTag:    opts.checkTag,
	})
	if err != nil {
		return err
	}

	if !result.Accepted() {
		return result.Validation.Err()
	}

	if result.Applied {
		fmt.Printf("Successfully updated registry for %s@%s\n", result.PackageID, sub.Tag)
	} else {
		fmt.Printf("Release %s@%s already recorded, registry unchanged\n", result.PackageID, sub.Tag)
	}
	return nil
}
