package test_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	orchestrators "github.com/rayforge/registry/internal/domain-orchestrators"
	"github.com/rayforge/registry/internal/domain/entities"
	"github.com/rayforge/registry/internal/domain/services"
	yamladapters "github.com/rayforge/registry/internal/external-adapters/yaml"
)

const allowlistFile = `repositories:
  - repo: acme/laser-profiles
    mode: direct
  - repo: acme/material-db
    mode: pr
`

func newPipeline(t *testing.T) (*orchestrators.SubmissionOrchestrator, *yamladapters.IndexRepository) {
	t.Helper()
	dir := t.TempDir()

	allowlistPath := filepath.Join(dir, "allowed-repositories.yaml")
	if err := os.WriteFile(allowlistPath, []byte(allowlistFile), 0o600); err != nil {
		t.Fatal(err)
	}

	indexRepo := yamladapters.NewIndexRepository(filepath.Join(dir, "registry.yaml"))
	orchestrator := orchestrators.NewSubmissionOrchestrator(
		services.NewValidatorService(),
		services.NewIndexBuilderService(),
		yamladapters.NewAllowlistRepository(allowlistPath, nil),
		indexRepo,
		nil,
	)
	return orchestrator, indexRepo
}

func payload(repo, tag, checksum string) *entities.Submission {
	sub, err := yamladapters.NewPayloadParser().Parse([]byte(`repository: ` + repo + `
tag: ` + tag + `
manifest:
  name: Test Package
  description: A package under test
  author: acme
  provides:
    assets:
      - url: https://example.com/` + tag + `/pkg.zip
        sha256: ` + checksum + `
`))
	if err != nil {
		panic(err)
	}
	return sub
}

// TestEndToEnd_PublishLifecycle drives the worked example through the
// real YAML persistence: empty index, two accepted releases, then a
// rejected downgrade that must leave the file untouched.
func TestEndToEnd_PublishLifecycle(t *testing.T) {
	orchestrator, indexRepo := newPipeline(t)
	ctx := context.Background()
	sum := strings.Repeat("a", 64)

	// v1.0.0 into an empty registry
	result, err := orchestrator.Submit(ctx, payload("acme/laser-profiles", "v1.0.0", sum), orchestrators.SubmitOptions{})
	if err != nil || !result.Applied {
		t.Fatalf("v1.0.0: applied=%v err=%v", result != nil && result.Applied, err)
	}

	// v1.1.0 on top
	result, err = orchestrator.Submit(ctx, payload("acme/laser-profiles", "v1.1.0", sum), orchestrators.SubmitOptions{})
	if err != nil || !result.Applied {
		t.Fatalf("v1.1.0: applied=%v err=%v", result != nil && result.Applied, err)
	}

	// resubmitting v1.0.0 is rejected and changes nothing
	result, err = orchestrator.Submit(ctx, payload("acme/laser-profiles", "v1.0.0", sum), orchestrators.SubmitOptions{})
	if err != nil {
		t.Fatalf("downgrade submit error: %v", err)
	}
	if result.Accepted() {
		t.Fatal("downgrade submission was accepted")
	}
	if result.Validation.Status != services.StatusVersionNotMonotonic {
		t.Errorf("status = %s, want %s", result.Validation.Status, services.StatusVersionNotMonotonic)
	}

	// persisted state reflects exactly the two accepted releases
	index, err := indexRepo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := index.Package("laser-profiles")
	if !ok {
		t.Fatal("laser-profiles missing from persisted index")
	}
	want := []string{"v1.0.0", "v1.1.0"}
	if len(entry.Versions) != len(want) {
		t.Fatalf("versions = %d, want %d", len(entry.Versions), len(want))
	}
	for i, rec := range entry.Versions {
		if rec.Version != want[i] {
			t.Errorf("versions[%d] = %s, want %s", i, rec.Version, want[i])
		}
	}
	if entry.LatestStable != "v1.1.0" {
		t.Errorf("latest_stable = %s, want v1.1.0", entry.LatestStable)
	}
}

// TestEndToEnd_NotAllowListed confirms an unknown publisher never
// creates a registry file.
func TestEndToEnd_NotAllowListed(t *testing.T) {
	orchestrator, indexRepo := newPipeline(t)
	ctx := context.Background()

	result, err := orchestrator.Submit(ctx, payload("intruder/laser-profiles", "v1.0.0", strings.Repeat("a", 64)), orchestrators.SubmitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Accepted() {
		t.Fatal("submission from unknown repo accepted")
	}

	index, err := indexRepo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(index.Packages) != 0 {
		t.Errorf("index has %d packages, want 0", len(index.Packages))
	}
}

// TestEndToEnd_IndependentSubmitters runs each submission through its
// own orchestrator over the same registry file, the way two separate
// submit processes would. The index write lock must serialize the whole
// load-merge-persist transaction so both accepted releases survive.
func TestEndToEnd_IndependentSubmitters(t *testing.T) {
	dir := t.TempDir()
	allowlistPath := filepath.Join(dir, "allowed-repositories.yaml")
	if err := os.WriteFile(allowlistPath, []byte(allowlistFile), 0o600); err != nil {
		t.Fatal(err)
	}
	registryPath := filepath.Join(dir, "registry.yaml")
	ctx := context.Background()
	sum := strings.Repeat("c", 64)

	newSubmitter := func() *orchestrators.SubmissionOrchestrator {
		return orchestrators.NewSubmissionOrchestrator(
			services.NewValidatorService(),
			services.NewIndexBuilderService(),
			yamladapters.NewAllowlistRepository(allowlistPath, nil),
			yamladapters.NewIndexRepository(registryPath),
			nil,
		)
	}

	var wg sync.WaitGroup
	for _, repo := range []string{"acme/laser-profiles", "acme/material-db"} {
		submitter := newSubmitter()
		wg.Add(1)
		go func(o *orchestrators.SubmissionOrchestrator, repo string) {
			defer wg.Done()
			result, err := o.Submit(ctx, payload(repo, "v1.0.0", sum), orchestrators.SubmitOptions{})
			if err != nil {
				t.Errorf("%s: %v", repo, err)
				return
			}
			if !result.Applied {
				t.Errorf("%s: not applied", repo)
			}
		}(submitter, repo)
	}
	wg.Wait()

	index, err := yamladapters.NewIndexRepository(registryPath).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"laser-profiles", "material-db"} {
		if _, ok := index.Package(id); !ok {
			t.Errorf("%s lost: accepted submission missing from final index", id)
		}
	}
}

// TestEndToEnd_ConcurrentPublishers submits releases for different
// packages in parallel; both must land in the persisted index.
func TestEndToEnd_ConcurrentPublishers(t *testing.T) {
	orchestrator, indexRepo := newPipeline(t)
	ctx := context.Background()
	sum := strings.Repeat("b", 64)

	var wg sync.WaitGroup
	for _, repo := range []string{"acme/laser-profiles", "acme/material-db"} {
		wg.Add(1)
		go func(repo string) {
			defer wg.Done()
			result, err := orchestrator.Submit(ctx, payload(repo, "v1.0.0", sum), orchestrators.SubmitOptions{})
			if err != nil {
				t.Errorf("%s: %v", repo, err)
				return
			}
			if !result.Applied {
				t.Errorf("%s: not applied", repo)
			}
		}(repo)
	}
	wg.Wait()

	index, err := indexRepo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"laser-profiles", "material-db"} {
		if _, ok := index.Package(id); !ok {
			t.Errorf("%s missing from persisted index", id)
		}
	}
}
