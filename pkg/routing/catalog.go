package routing

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of the model metadata catalog.
type catalogFile struct {
	Models []ModelMetadata `yaml:"models"`
}

// LoadCatalog reads the model metadata catalog from a YAML file.
// Duplicate model names are rejected.
func LoadCatalog(path string) ([]ModelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Models))
	for _, m := range file.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("catalog model with empty name")
		}
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("duplicate catalog model %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return file.Models, nil
}

// Catalog holds the model metadata set behind a read lock so that a
// configuration reload can swap it while requests are routing.
type Catalog struct {
	mu     sync.RWMutex
	models []ModelMetadata
}

// NewCatalog creates a catalog over the given models.
func NewCatalog(models []ModelMetadata) *Catalog {
	return &Catalog{models: models}
}

// Models returns the current metadata set. The returned slice is shared
// and must not be mutated.
func (c *Catalog) Models() []ModelMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.models
}

// Replace swaps the metadata set wholesale.
func (c *Catalog) Replace(models []ModelMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = models
}

// Available filters the catalog to models present in the given set,
// typically the federated model list across active backends.
func (c *Catalog) Available(models map[string]struct{}) []ModelMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []ModelMetadata
	for _, m := range c.models {
		if _, ok := models[m.Name]; ok {
			out = append(out, m)
		}
	}
	return out
}
