// Package presets loads named FilterCriteria from YAML.
//
//	presets:
//	  - name: tokyo-electronics
//	    age_min: 25
//	    age_max: 45
//	    city: Tokyo
//	    product_category: Electronics
package presets

import (
	"fmt"
	"io"
	"os"

	"custlens/domain/core"
	"custlens/domain/customer"

	"gopkg.in/yaml.v3"
)

// Preset is a named filter selection.
type Preset struct {
	Name     string                  `yaml:"name" json:"name"`
	Criteria customer.FilterCriteria `yaml:",inline" json:"criteria"`
}

type file struct {
	Presets []Preset `yaml:"presets"`
}

// Load reads and validates a preset file.
func Load(path string) ([]Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates presets. Omitted age bounds default to the
// dashboard's window; omitted selectors mean All.
func Parse(r io.Reader) ([]Preset, error) {
	var raw struct {
		Presets []yaml.Node `yaml:"presets"`
	}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: presets file is empty", core.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: decode presets: %v", core.ErrInvalidInput, err)
	}

	out := make([]Preset, 0, len(raw.Presets))
	seen := make(map[string]bool)
	for i, node := range raw.Presets {
		p := Preset{Criteria: customer.DefaultCriteria()}
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("%w: preset %d: %v", core.ErrInvalidInput, i, err)
		}
		if p.Name == "" {
			return nil, core.NewValidationError(fmt.Sprintf("presets[%d].name", i), "is required")
		}
		if seen[p.Name] {
			return nil, core.NewValidationError(fmt.Sprintf("presets[%d].name", i), "duplicate "+p.Name)
		}
		seen[p.Name] = true
		if err := p.Criteria.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		p.Criteria = p.Criteria.Normalize()
		out = append(out, p)
	}
	return out, nil
}

// Write encodes presets as YAML.
func Write(w io.Writer, presets []Preset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file{Presets: presets}); err != nil {
		return err
	}
	return enc.Close()
}

// Defaults returns one preset per city plus the unfiltered default window.
func Defaults() []Preset {
	out := []Preset{{Name: "all", Criteria: customer.DefaultCriteria()}}
	for _, city := range customer.Cities {
		c := customer.DefaultCriteria()
		c.City = city
		out = append(out, Preset{Name: city, Criteria: c})
	}
	return out
}
