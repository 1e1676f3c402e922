package sources

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yml
var defaultRegistry []byte

// Loader handles loading and validation of the feed source registry.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given registry file. An empty
// path selects the built-in registry.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the registry, validates each entry, and returns the
// usable sources. Invalid entries are skipped with a warning rather
// than failing the whole registry.
func (l *Loader) Load() ([]Source, error) {
	data := defaultRegistry
	if l.path != "" {
		fileData, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sources file: %w", err)
		}
		data = fileData
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	valid := make([]Source, 0, len(registry.Sources))
	seen := make(map[string]bool)
	for i, source := range registry.Sources {
		if err := l.validate(source); err != nil {
			slog.Warn("Skipping invalid source", "index", i, "name", source.Name, "error", err)
			continue
		}
		if seen[source.URL] {
			slog.Warn("Skipping duplicate source URL", "name", source.Name, "url", source.URL)
			continue
		}
		seen[source.URL] = true
		valid = append(valid, source)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid sources in registry")
	}

	return valid, nil
}

func (l *Loader) validate(source Source) error {
	if source.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if source.URL == "" {
		return fmt.Errorf("source URL is required")
	}

	parsed, err := url.Parse(source.URL)
	if err != nil {
		return fmt.Errorf("invalid source URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("source URL must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("source URL has no host")
	}

	return nil
}
