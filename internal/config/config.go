// Package config resolves the mapping configuration for a run: the member
// roster and the priority and status code tables. Rosters differ per
// project, so they live in a YAML file rather than in code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/siftertools/sift2bb/internal/mapping"
	"github.com/siftertools/sift2bb/internal/model"
)

const defaultFileName = "sift2bb.yaml"

// Config holds the resolved mapping configuration.
type Config struct {
	Path       string // config file the tables came from, "" for built-in defaults
	EnvVarSet  bool   // whether SIFT2BB_CONFIG was used
	Members    map[int]string
	Priorities map[int]model.Priority
	Statuses   map[int]model.Status
}

// configFile is the YAML shape of a mapping file. Every section is
// optional; omitted sections keep their defaults.
type configFile struct {
	Members    map[int]string `yaml:"members"`
	Priorities map[int]string `yaml:"priorities"`
	Statuses   map[int]string `yaml:"statuses"`
}

// defaultMembers is the roster shipped with the tool, overridable without
// a code change by any config file.
func defaultMembers() map[int]string {
	return map[int]string{
		59211: "grdscrc",
		46868: "jdkoeck",
		46974: "josselinauguste",
		47145: "Popoche",
		47322: "ValentinLG",
	}
}

// Resolve returns the configuration, checking the explicit flag path
// first, then SIFT2BB_CONFIG, then ./sift2bb.yaml, then built-in
// defaults. A path given explicitly must exist; the cwd fallback is
// skipped silently when absent.
func Resolve(flagPath string) (*Config, error) {
	cfg := &Config{
		Members:    defaultMembers(),
		Priorities: mapping.DefaultPriorities(),
		Statuses:   mapping.DefaultStatuses(),
	}

	path := flagPath
	if path == "" {
		if envPath := os.Getenv("SIFT2BB_CONFIG"); envPath != "" {
			path = envPath
			cfg.EnvVarSet = true
		} else if _, err := os.Stat(defaultFileName); err == nil {
			path = defaultFileName
		}
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.apply(&f); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// apply merges a parsed file into the defaults. A members section replaces
// the roster wholesale; priority and status entries override per code and
// must name valid target values.
func (c *Config) apply(f *configFile) error {
	if f.Members != nil {
		c.Members = f.Members
	}
	for code, v := range f.Priorities {
		p := model.Priority(v)
		if err := model.ValidatePriority(p); err != nil {
			return fmt.Errorf("priority %d: %w", code, err)
		}
		c.Priorities[code] = p
	}
	for code, v := range f.Statuses {
		s := model.Status(v)
		if err := model.ValidateStatus(s); err != nil {
			return fmt.Errorf("status %d: %w", code, err)
		}
		c.Statuses[code] = s
	}
	return nil
}

// Tables builds the reference tables from the resolved configuration.
func (c *Config) Tables() *mapping.Tables {
	return mapping.NewTables(c.Members, c.Priorities, c.Statuses)
}
