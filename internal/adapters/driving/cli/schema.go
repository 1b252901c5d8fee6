package cli

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/extraction"
)

var schemaPack bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print JSON schemas",
	Long: `Prints the JSON schema of the extraction result returned by the API,
or with --pack the schema that pattern pack files are validated against.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipServices: "true"},
	RunE:        runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaPack, "pack", false, "print the pattern pack schema")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	if schemaPack {
		cmd.Println(string(extraction.PackSchema()))
		return nil
	}

	data, err := resultSchema()
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

// resultSchema reflects the OCRResult contract.
func resultSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&domain.OCRResult{})
	schema.Title = "OCRResult"
	schema.Description = "Structured fields extracted from one scanned marksheet"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling schema: %w", err)
	}
	return data, nil
}
