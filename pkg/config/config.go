// Package config loads the two JSON configuration files scrapyard reads at
// startup: scrapyard.json (domain.MasterConfig) and feeds.json
// ([]domain.FeedOption). Absent either file, it bootstraps a default and
// writes it back — generalising a single YAML file with built-in
// zero-value defaults into two JSON files plus a write-back bootstrap,
// grounded on original_source/src/values.rs's init() and
// original_source/src/options/feeds.rs's Feeds default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siriusmart/scrapyard/pkg/domain"
)

// Config is the fully loaded, defaulted and validated configuration.
type Config struct {
	Master domain.MasterConfig
	Feeds  []domain.FeedOption
}

// Load reads masterPath (scrapyard.json) and feedsPath (feeds.json),
// bootstrapping either file with a default if it doesn't exist yet.
func Load(masterPath, feedsPath string) (*Config, error) {
	master, err := loadMaster(masterPath)
	if err != nil {
		return nil, err
	}

	feeds, err := loadFeeds(feedsPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Master: master, Feeds: feeds}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadMaster(path string) (domain.MasterConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from CLI flag / env
	if os.IsNotExist(err) {
		master := domain.MasterConfig{Store: defaultStoreDir()}
		master.ApplyDefaults()
		if err := writeJSONPretty(path, master); err != nil {
			return domain.MasterConfig{}, fmt.Errorf("bootstrap %s: %w", path, err)
		}
		return master, nil
	}
	if err != nil {
		return domain.MasterConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	var master domain.MasterConfig
	if err := json.Unmarshal(data, &master); err != nil {
		return domain.MasterConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	master.ApplyDefaults()
	return master, nil
}

func loadFeeds(path string) ([]domain.FeedOption, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from CLI flag / env
	if os.IsNotExist(err) {
		feeds := []domain.FeedOption{newFeedDefaults()}
		feeds[0].ApplyDefaults()
		if err := writeJSONPretty(path, feeds); err != nil {
			return nil, fmt.Errorf("bootstrap %s: %w", path, err)
		}
		return feeds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	feeds := make([]domain.FeedOption, len(raw))
	for i := range raw {
		feeds[i] = newFeedDefaults()
		if err := json.Unmarshal(raw[i], &feeds[i]); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		feeds[i].ApplyDefaults()
	}
	return feeds, nil
}

// newFeedDefaults pre-seeds a FeedOption with the fields ApplyDefaults can't
// zero-value-detect: Sort and Fetch both default to true
// (original_source/src/options/feeds.rs's serde_inline_default(true) on
// both), so unmarshaling into this instead of a bare FeedOption{} preserves
// "true" for a feeds.json entry that omits "sort"/"fetch" entirely.
func newFeedDefaults() domain.FeedOption {
	return domain.FeedOption{Sort: true, Fetch: true}
}

// Validate checks the loaded configuration against VerifyAgainstEmbeddedSchema's
// required-field rules, plus the cross-feed label-uniqueness invariant
// spec.md §3 assumes (labels are path components and lock keys).
func (c *Config) Validate() error {
	if err := VerifyAgainstEmbeddedSchema(c); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Feeds))
	for i := range c.Feeds {
		if err := c.Feeds[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[c.Feeds[i].Label]; dup {
			return fmt.Errorf("duplicate feed label %q", c.Feeds[i].Label)
		}
		seen[c.Feeds[i].Label] = struct{}{}
	}
	return nil
}

func writeJSONPretty(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // config file, not a secret
}

// defaultStoreDir picks a placeholder store path for a freshly bootstrapped
// scrapyard.json, mirroring original_source/src/options/master.rs's
// "/full/path/to/dir" sentinel default that an operator is expected to edit.
func defaultStoreDir() string {
	return filepath.Join(string(os.PathSeparator), "full", "path", "to", "dir")
}
