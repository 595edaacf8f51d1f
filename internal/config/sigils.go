package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quillmark/quillmark/internal/marker"
)

// SigilProfile is the on-disk shape of a custom marker table.
//
//	sigils:
//	  - sigil: "[?]"
//	    kind: interactive
//	    config_sections: 1
type SigilProfile struct {
	Sigils []SigilEntry `yaml:"sigils"`
}

type SigilEntry struct {
	Sigil          string `yaml:"sigil"`
	Kind           string `yaml:"kind"`
	ConfigSections int    `yaml:"config_sections"`
}

// LoadSigils reads a YAML sigil profile from path. An empty path
// returns the built-in table.
func LoadSigils(path string) ([]marker.Sigil, error) {
	if path == "" {
		return marker.DefaultSigils(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sigil profile: %w", err)
	}

	var profile SigilProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse sigil profile %s: %w", path, err)
	}
	if len(profile.Sigils) == 0 {
		return nil, fmt.Errorf("sigil profile %s defines no sigils", path)
	}

	sigils := make([]marker.Sigil, 0, len(profile.Sigils))
	for _, e := range profile.Sigils {
		sigils = append(sigils, marker.Sigil{
			Literal:        e.Sigil,
			Kind:           e.Kind,
			ConfigSections: e.ConfigSections,
		})
	}
	return sigils, nil
}
