// Package orchestrators coordinates domain services for complete use cases.
package orchestrators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rayforge/registry/internal/domain/entities"
	"github.com/rayforge/registry/internal/domain/interfaces"
	"github.com/rayforge/registry/internal/domain/interfaces/gateways"
	"github.com/rayforge/registry/internal/domain/interfaces/repositories"
	"github.com/rayforge/registry/internal/domain/services"
)

// SubmissionOrchestrator runs the full publishing pipeline for one
// submission: validate, merge into the index, persist. Index mutations
// are serialized: at most one submission is applied at a time, and a
// submission that fails validation never touches storage. The registry
// performs no retries; the publisher CI owns the retry burden.
type SubmissionOrchestrator struct {
	mu sync.Mutex

	validator *services.ValidatorService
	builder   *services.IndexBuilderService
	allowRepo repositories.AllowlistRepository
	indexRepo repositories.IndexRepository
	log       interfaces.Logger

	// Optional pre-merge gates, enabled per invocation via SubmitOptions.
	prober   gateways.AssetProber
	releases gateways.ReleaseGateway
}

// NewSubmissionOrchestrator creates a new submission orchestrator
func NewSubmissionOrchestrator(
	validator *services.ValidatorService,
	builder *services.IndexBuilderService,
	allowRepo repositories.AllowlistRepository,
	indexRepo repositories.IndexRepository,
	log interfaces.Logger,
) *SubmissionOrchestrator {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &SubmissionOrchestrator{
		validator: validator,
		builder:   builder,
		allowRepo: allowRepo,
		indexRepo: indexRepo,
		log:       log,
	}
}

// WithAssetProber enables reachability probing of declared asset URLs.
func (o *SubmissionOrchestrator) WithAssetProber(p gateways.AssetProber) *SubmissionOrchestrator {
	o.prober = p
	return o
}

// WithReleaseGateway enables checking that the submitted tag exists on
// the source repository.
func (o *SubmissionOrchestrator) WithReleaseGateway(g gateways.ReleaseGateway) *SubmissionOrchestrator {
	o.releases = g
	return o
}

// SubmitOptions toggles the optional pre-merge gates.
type SubmitOptions struct {
	ProbeAssets bool
	CheckTag    bool
}

// SubmissionResult reports the outcome of one submission.
type SubmissionResult struct {
	PackageID  string
	Validation *services.SubmissionValidation
	Applied    bool // false when rejected or when the release was already present
	Index      *entities.RegistryIndex
	Duration   time.Duration
}

// Accepted returns true if the submission passed validation.
func (r *SubmissionResult) Accepted() bool {
	return r.Validation != nil && r.Validation.Accepted()
}

// Submit runs validate, merge and persist as one serialized transaction.
// The whole sequence executes inside IndexRepository.Update, so the index
// write lock is held from the load to the final rename: submissions from
// independent registry processes cannot interleave and overwrite each
// other's accepted releases. A rejected submission is returned with its
// validation result and a nil error; infrastructure failures return an
// error and leave the prior index authoritative.
func (o *SubmissionOrchestrator) Submit(ctx context.Context, sub *entities.Submission, opts SubmitOptions) (*SubmissionResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()
	result := &SubmissionResult{PackageID: sub.PackageID()}

	allowlist, err := o.allowRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading allowlist: %w", err)
	}

	index, err := o.indexRepo.Update(ctx, func(current *entities.RegistryIndex) (*entities.RegistryIndex, error) {
		result.Validation = o.validator.ValidateSubmission(sub, allowlist, current)
		if !result.Validation.Accepted() {
			return current, nil
		}

		if opts.CheckTag && o.releases != nil {
			exists, err := o.releases.TagExists(ctx, sub.Repository, sub.Tag)
			if err != nil {
				return nil, fmt.Errorf("checking release tag: %w", err)
			}
			if !exists {
				result.Validation = &services.SubmissionValidation{
					Status: services.StatusMalformedManifest,
					Reason: fmt.Sprintf("tag %s does not exist on %s", sub.Tag, sub.Repository),
				}
				return current, nil
			}
		}

		if opts.ProbeAssets && o.prober != nil {
			for _, asset := range sub.Manifest.Provides.Assets {
				if _, err := o.prober.ProbeAsset(ctx, asset.URL); err != nil {
					result.Validation = &services.SubmissionValidation{
						Status: services.StatusMalformedManifest,
						Reason: fmt.Sprintf("asset %s is not reachable: %v", asset.URL, err),
					}
					return current, nil
				}
			}
		}

		next, err := o.builder.ApplyRelease(current, sub)
		if err != nil {
			return nil, err
		}
		if next != current {
			result.Applied = true
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	result.Index = index
	result.Duration = time.Since(start)

	if !result.Validation.Accepted() {
		o.log.Warn("submission rejected",
			interfaces.F("package", result.PackageID),
			interfaces.F("tag", sub.Tag),
			interfaces.F("status", string(result.Validation.Status)),
			interfaces.F("reason", result.Validation.Reason))
		return result, nil
	}

	o.log.Info("submission accepted",
		interfaces.F("package", result.PackageID),
		interfaces.F("tag", sub.Tag),
		interfaces.F("applied", result.Applied),
		interfaces.F("duration", result.Duration.String()))

	return result, nil
}
