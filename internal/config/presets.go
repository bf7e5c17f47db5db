package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/zipafford/internal/model"
)

// Preset is a named profile shipped in the presets file.
type Preset struct {
	Name        string
	Description string
	Inputs      model.AffordabilityInputs
}

// LoadPresets reads a YAML presets file. Each preset starts from base and
// overrides only the fields it sets:
//
//	presets:
//	  - name: first-home
//	    description: FHA-style low down payment
//	    inputs:
//	      annual_income: 85000
//	      down_payment_pct: 3.5
func LoadPresets(path string, base model.AffordabilityInputs) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read presets %s", path)
	}

	var file struct {
		Presets []struct {
			Name        string    `yaml:"name"`
			Description string    `yaml:"description"`
			Inputs      yaml.Node `yaml:"inputs"`
		} `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "config: parse presets")
	}

	seen := make(map[string]bool, len(file.Presets))
	presets := make([]Preset, 0, len(file.Presets))
	for i, raw := range file.Presets {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, eris.Errorf("config: preset %d has no name", i)
		}
		if seen[name] {
			return nil, eris.Errorf("config: duplicate preset %q", name)
		}
		seen[name] = true

		in := base.Clone()
		if raw.Inputs.Kind != 0 {
			if err := raw.Inputs.Decode(&in); err != nil {
				return nil, eris.Wrapf(err, "config: preset %q inputs", name)
			}
		}
		presets = append(presets, Preset{Name: name, Description: raw.Description, Inputs: in})
	}
	return presets, nil
}

// FindPreset returns the preset with the given name.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
