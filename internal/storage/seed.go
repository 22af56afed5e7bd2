package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/dex/internal/model"
	"gopkg.in/yaml.v3"
)

// Seed is the file format for bootstrapping or dumping a database.
// Files ending in .yaml or .yml are YAML, everything else is JSON.
type Seed struct {
	Entries  []model.Entry   `json:"entries"`
	Profiles []model.Profile `json:"profiles,omitempty"`
}

// yamlSeed mirrors Seed for YAML files, where entry details are written
// as a nested mapping instead of raw JSON.
type yamlSeed struct {
	Entries  []yamlEntry     `yaml:"entries"`
	Profiles []model.Profile `yaml:"profiles,omitempty"`
}

type yamlEntry struct {
	model.Entry `yaml:",inline"`
	Details     map[string]any `yaml:"details,omitempty"`
}

func toYAMLSeed(seed *Seed) (*yamlSeed, error) {
	out := &yamlSeed{
		Entries:  make([]yamlEntry, len(seed.Entries)),
		Profiles: seed.Profiles,
	}
	for i, e := range seed.Entries {
		out.Entries[i].Entry = e
		if len(e.Details) == 0 {
			continue
		}
		if err := json.Unmarshal(e.Details, &out.Entries[i].Details); err != nil {
			return nil, fmt.Errorf("entry %d details: %w", e.ID, err)
		}
	}
	return out, nil
}

func (y *yamlSeed) seed() (*Seed, error) {
	out := &Seed{
		Entries:  make([]model.Entry, len(y.Entries)),
		Profiles: y.Profiles,
	}
	for i, ye := range y.Entries {
		e := ye.Entry
		if len(ye.Details) > 0 {
			raw, err := json.Marshal(ye.Details)
			if err != nil {
				return nil, fmt.Errorf("entry %d details: %w", e.ID, err)
			}
			e.Details = raw
		}
		out.Entries[i] = e
	}
	return out, nil
}

// LoadSeed reads a seed file.
// Returns an empty seed if the file doesn't exist.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Seed{Entries: []model.Entry{}}, nil
		}
		return nil, err
	}

	var seed *Seed
	if isYAML(path) {
		var y yamlSeed
		if err := yaml.Unmarshal(data, &y); err != nil {
			return nil, err
		}
		if seed, err = y.seed(); err != nil {
			return nil, err
		}
	} else {
		seed = &Seed{}
		if err := json.Unmarshal(data, seed); err != nil {
			return nil, err
		}
	}

	if seed.Entries == nil {
		seed.Entries = []model.Entry{}
	}

	return seed, nil
}

// SaveSeed writes a seed file.
// Creates the directory if it doesn't exist.
func SaveSeed(path string, seed *Seed) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		var y *yamlSeed
		if y, err = toYAMLSeed(seed); err != nil {
			return err
		}
		data, err = yaml.Marshal(y)
	} else {
		data, err = json.MarshalIndent(seed, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplySeed upserts the seed's entries and inserts its profiles.
// Profiles that already exist are left alone.
func (s *SQLiteStorage) ApplySeed(ctx context.Context, seed *Seed) error {
	if err := s.UpsertEntries(ctx, seed.Entries); err != nil {
		return err
	}

	for _, p := range seed.Profiles {
		if err := s.InsertProfile(ctx, p); err != nil && !errors.Is(err, ErrDuplicate) {
			return err
		}
	}

	return nil
}

// DumpSeed collects every entry, including hidden and inactive ones.
func (s *SQLiteStorage) DumpSeed(ctx context.Context) (*Seed, error) {
	entries, err := s.ListEntries(ctx, EntryFilter{IncludeHidden: true, IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	return &Seed{Entries: entries}, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
