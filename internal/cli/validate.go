package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/precario/internal/importer"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool               `json:"valid"`
	File     string             `json:"file"`
	Products int                `json:"products"`
	Queues   int                `json:"queues"`
	Failures []importer.Failure `json:"failures,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file without importing it",
		Long: `Check a YAML, JSON or CSV catalog file without touching the store.

Runs the same schema and per-record checks as import. Faster than a dry
import and safe to run against a live shop.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	format, err := importer.FormatFromPath(path)
	if err != nil {
		return usageError(formatter, err.Error())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return documentError(formatter, path, err)
	}

	doc, err := parseDocument(filepath.Base(path), data, format)
	if err != nil {
		return documentError(formatter, path, err)
	}
	formatter.VerboseLog("Parsed %d product(s) and %d queue(s) from %s", len(doc.Products), len(doc.Queues), path)

	result := ValidationResult{
		Valid:    true,
		File:     path,
		Products: len(doc.Products),
		Queues:   len(doc.Queues),
	}
	if failures := importer.Check(doc); len(failures) > 0 {
		result.Valid = false
		result.Failures = failures
		return outputValidationErrors(formatter, result)
	}

	// Output success
	return outputValidateSuccess(formatter, result)
}

func parseDocument(name string, data []byte, format importer.Format) (importer.Catalog, error) {
	if format == importer.FormatCSV {
		return importer.ParseCSV(bytes.NewReader(data))
	}
	schema, err := importer.NewSchema()
	if err != nil {
		return importer.Catalog{}, err
	}
	return schema.Decode(name, data, format)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d products, %d queues)\n", result.File, result.Products, result.Queues)
	return nil
}

// outputValidationErrors outputs rejected records.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeValidation,
				Message: result.Failures[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Failures)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "✗ Validation failed for %s\n", result.File)
	writeFailures(formatter.Writer, result.Failures)

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Failures)))
}
