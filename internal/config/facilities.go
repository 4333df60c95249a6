package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Facilities names the facility prototypes the aggregation columns draw
// from. Scenario families that rename their facilities override these via a
// YAML file.
type Facilities struct {
	HEUSink          string   `yaml:"heu_sink"`
	PuSink           string   `yaml:"pu_sink"`
	Enrichment       string   `yaml:"enrichment"`
	NaturalUStorage  string   `yaml:"natural_u_storage"`
	FreshFuelStorage string   `yaml:"fresh_fuel_storage"`
	DepletedUSink    string   `yaml:"depleted_u_sink"`
	WasteSink        string   `yaml:"waste_sink"`
	Reactors         []string `yaml:"reactors"`
}

// DefaultFacilities returns the facility names of the baseline scenario
// family.
func DefaultFacilities() Facilities {
	return Facilities{
		HEUSink:          "WeapongradeUSink",
		PuSink:           "SeparatedPuSink",
		Enrichment:       "EnrichmentFacility",
		NaturalUStorage:  "NaturalUStorage",
		FreshFuelStorage: "FreshFuelStorage",
		DepletedUSink:    "DepletedUSink",
		WasteSink:        "FinalWasteSink",
		Reactors:         []string{"Khushab1", "Khushab2", "Khushab3", "Khushab4"},
	}
}

// LoadFacilities reads a facility model from YAML. Fields the file leaves
// out keep their defaults.
func LoadFacilities(path string) (Facilities, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return Facilities{}, fmt.Errorf("config: read facilities: %w", err)
	}
	fac := DefaultFacilities()
	if err := yaml.Unmarshal(raw, &fac); err != nil {
		return Facilities{}, fmt.Errorf("config: parse facilities %s: %w", path, err)
	}
	return fac, nil
}

// Validate checks that every facility role is named.
func (f Facilities) Validate() error {
	roles := []struct {
		field string
		val   string
	}{
		{"heu_sink", f.HEUSink},
		{"pu_sink", f.PuSink},
		{"enrichment", f.Enrichment},
		{"natural_u_storage", f.NaturalUStorage},
		{"fresh_fuel_storage", f.FreshFuelStorage},
		{"depleted_u_sink", f.DepletedUSink},
		{"waste_sink", f.WasteSink},
	}
	for _, r := range roles {
		if r.val == "" {
			return fmt.Errorf("config: facility %s must not be empty", r.field)
		}
	}
	if len(f.Reactors) == 0 {
		return fmt.Errorf("config: at least one reactor is required")
	}
	for i, r := range f.Reactors {
		if r == "" {
			return fmt.Errorf("config: reactor %d must not be empty", i)
		}
	}
	return nil
}
