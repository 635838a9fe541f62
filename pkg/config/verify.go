package config

import (
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/siriusmart/scrapyard/pkg/domain"
)

// VerifyAgainstEmbeddedSchema validates cfg's required fields. Full JSON
// Schema draft validation would need a dedicated validator on top of
// invopop/jsonschema (which only reflects schemas, it doesn't check
// instances against them); GenerateSchema below exists for operators and
// editor tooling, while the actual gate here stays a hand-written
// required-field check.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return validateRequiredFields(cfg)
}

// validateRequiredFields performs basic validation of required fields.
func validateRequiredFields(cfg *Config) error {
	if err := cfg.Master.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("validation failed: feeds must not be empty")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the MasterConfig shape, for
// operators hand-editing scrapyard.json. GenerateFeedSchema covers feeds.json.
func GenerateSchema() (*jsonschema.Schema, error) {
	reflector := &jsonschema.Reflector{}
	if err := reflector.AddGoComments("github.com/siriusmart/scrapyard", "./pkg/domain"); err != nil {
		return jsonschema.Reflect(&domain.MasterConfig{}), nil //nolint:nilerr // comments are best-effort, schema still usable
	}
	return reflector.Reflect(&domain.MasterConfig{}), nil
}

// GenerateFeedSchema generates a JSON schema for FeedOption.
func GenerateFeedSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&domain.FeedOption{}), nil
}
