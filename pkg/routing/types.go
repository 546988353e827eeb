package routing

import "strings"

// Capabilities is the capability set a model advertises.
type Capabilities struct {
	Images      bool `yaml:"images"`
	Code        bool `yaml:"code"`
	ToolCalling bool `yaml:"tool_calling"`
	Internet    bool `yaml:"internet"`
	Thinking    bool `yaml:"thinking"`
	Fast        bool `yaml:"fast"`
}

// Count returns the number of enabled capabilities.
func (c Capabilities) Count() int {
	n := 0
	for _, b := range []bool{c.Images, c.Code, c.ToolCalling, c.Internet, c.Thinking, c.Fast} {
		if b {
			n++
		}
	}
	return n
}

// Pricing is the model's cost per million tokens.
type Pricing struct {
	Prompt     float64 `yaml:"prompt"`
	Completion float64 `yaml:"completion"`
}

// ModelMetadata describes one catalog model for routing purposes. The
// catalog is operator-managed and consumed read-only by the router.
type ModelMetadata struct {
	// Name is the model identifier, unique within the catalog.
	Name string `yaml:"name"`

	// Capabilities the model advertises.
	Capabilities Capabilities `yaml:"capabilities"`

	// Description is free text matched against request keywords.
	Description string `yaml:"description"`

	// Priority ranks the model explicitly, 1 is best. Zero means unset.
	Priority int `yaml:"priority"`

	// Pricing is the cost per million tokens. Zero means free.
	Pricing Pricing `yaml:"pricing"`
}

// Free reports whether the model costs nothing. A ":free" name suffix
// counts even when pricing is absent from the catalog. Cloud models are
// never free; they are a category of their own in tiering.
func (m ModelMetadata) Free() bool {
	if m.Cloud() {
		return false
	}
	if m.Pricing.Prompt == 0 && m.Pricing.Completion == 0 {
		return true
	}
	return strings.HasSuffix(strings.ToLower(m.Name), ":free")
}

// Cloud reports whether the model is a hosted cloud model.
func (m ModelMetadata) Cloud() bool {
	return strings.HasSuffix(m.Name, ":cloud")
}
