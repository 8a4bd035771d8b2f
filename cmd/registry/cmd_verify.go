package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rayforge/registry/internal/domain-adapters/gateways"
)

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: registry verify <file> <sha256>

Verify that a downloaded asset matches the checksum recorded in the
registry index.

Exit Codes:
  0  Checksum matches
  1  Checksum mismatch or unreadable file
  2  Usage error

Examples:
  registry verify laser-profiles-1.2.0.zip 3f5a9c...
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Error: file and sha256 are required\n\n")
		fs.Usage()
		os.Exit(2)
	}

	verifier := gateways.NewChecksumVerifier()
	if err := verifier.VerifyFile(ctx, fs.Arg(0), fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("OK: checksum verified")
}
