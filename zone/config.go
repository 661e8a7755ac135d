package zone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on disk layout of a zones definition file
type fileConfig struct {
	Zones []Zone `yaml:"zones"`
}

// LoadFile reads zone definitions from a YAML file and returns a
// validated zone set
func LoadFile(path string) (*Set, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading zones file: %w", err)
	}

	var cfg fileConfig

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing zones file %s: %w", path, err)
	}

	if len(cfg.Zones) == 0 {
		return nil, fmt.Errorf("zones file %s defines no zones", path)
	}

	return NewSet(cfg.Zones)
}
