package yaml

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rayforge/registry/internal/domain/entities"
	"github.com/rayforge/registry/internal/domain/interfaces"
)

// yamlAllowlist represents the raw allowed-repositories.yaml structure
type yamlAllowlist struct {
	Repositories []yamlAllowedRepo `yaml:"repositories"`
}

type yamlAllowedRepo struct {
	Repo string `yaml:"repo"`
	Mode string `yaml:"mode"`
}

// AllowlistRepository implements repositories.AllowlistRepository backed
// by the maintainer-edited allowed-repositories.yaml file.
type AllowlistRepository struct {
	path string
	log  interfaces.Logger
}

// NewAllowlistRepository creates a new YAML-based allow-list repository
func NewAllowlistRepository(path string, log interfaces.Logger) *AllowlistRepository {
	if log == nil {
		log = &interfaces.NoOpLogger{}
	}
	return &AllowlistRepository{path: path, log: log}
}

// Load reads the allow-list file. Entries with a missing or invalid mode
// fall back to the safe default.
func (r *AllowlistRepository) Load(_ context.Context) (*entities.Allowlist, error) {
	//nolint:gosec // G304: path is the maintainer-configured allow-list location
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowlist %s: %w", r.path, err)
	}

	var raw yamlAllowlist
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse allowlist: %w", err)
	}

	entries := make([]entities.AllowedRepository, 0, len(raw.Repositories))
	for _, item := range raw.Repositories {
		if item.Repo == "" {
			continue
		}

		mode := entities.MergeMode(item.Mode)
		if item.Mode == "" {
			mode = entities.DefaultMergeMode
		} else if !mode.Valid() {
			r.log.Warn("invalid merge mode, falling back to safe default",
				interfaces.F("repo", item.Repo),
				interfaces.F("mode", item.Mode),
				interfaces.F("default", string(entities.DefaultMergeMode)))
			mode = entities.DefaultMergeMode
		}

		entries = append(entries, entities.AllowedRepository{Repo: item.Repo, Mode: mode})
	}

	return entities.NewAllowlist(entries), nil
}
