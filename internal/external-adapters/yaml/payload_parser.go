// Package yaml provides YAML-based parsing and repository implementations
// for submission payloads, the allow-list and the registry index.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rayforge/registry/internal/domain/entities"
)

// yamlSubmission represents the raw payload structure delivered by
// publisher CI
type yamlSubmission struct {
	Repository string       `yaml:"repository"`
	Tag        string       `yaml:"tag"`
	Manifest   yamlManifest `yaml:"manifest"`
}

type yamlManifest struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Author      string       `yaml:"author"`
	Provides    yamlProvides `yaml:"provides"`
}

type yamlProvides struct {
	Assets []yamlAsset `yaml:"assets"`
}

type yamlAsset struct {
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256"`
}

// PayloadParser parses release-submission payload files
type PayloadParser struct{}

// NewPayloadParser creates a new YAML payload parser
func NewPayloadParser() *PayloadParser {
	return &PayloadParser{}
}

// ParseFile parses a payload file into a Submission entity
func (p *PayloadParser) ParseFile(filePath string) (*entities.Submission, error) {
	//nolint:gosec // G304: filePath is the payload path handed over by CI
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Submission entity. Only structural
// requirements are enforced here; semantic checks belong to the validator.
func (p *PayloadParser) Parse(data []byte) (*entities.Submission, error) {
	var raw yamlSubmission
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if raw.Repository == "" {
		return nil, fmt.Errorf("payload must name the publishing repository")
	}
	if raw.Tag == "" {
		return nil, fmt.Errorf("payload must carry a release tag")
	}

	assets := make([]entities.Asset, 0, len(raw.Manifest.Provides.Assets))
	for _, a := range raw.Manifest.Provides.Assets {
		assets = append(assets, entities.Asset{
			Path:   a.Path,
			URL:    a.URL,
			SHA256: a.SHA256,
		})
	}

	return &entities.Submission{
		Repository: raw.Repository,
		Tag:        raw.Tag,
		Manifest: entities.Manifest{
			Name:        raw.Manifest.Name,
			Description: raw.Manifest.Description,
			Author:      raw.Manifest.Author,
			Provides:    entities.Provides{Assets: assets},
		},
	}, nil
}
