// Command schema writes the JSON schemas for scrapyard.json and
// feeds.json to disk, for operators hand-editing those files.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/siriusmart/scrapyard/pkg/config"
)

func main() {
	masterSchema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("failed to generate master config schema: %v", err)
	}
	feedSchema, err := config.GenerateFeedSchema()
	if err != nil {
		log.Fatalf("failed to generate feed schema: %v", err)
	}

	outputDir := "."
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := writeSchema(outputDir+"/scrapyard.schema.json", masterSchema); err != nil {
		log.Fatalf("failed to write master config schema: %v", err)
	}
	if err := writeSchema(outputDir+"/feeds.schema.json", feedSchema); err != nil {
		log.Fatalf("failed to write feeds schema: %v", err)
	}

	fmt.Printf("schemas generated successfully in %s\n", outputDir)
}

func writeSchema(path string, schema interface{}) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	return os.WriteFile(path, data, 0o600) //nolint:gosec // schema file is not sensitive
}
