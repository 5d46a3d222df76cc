package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/precario/internal/importer"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load products and queues from a catalog file",
		Long: `Load products and queues from a YAML, JSON or legacy CSV file.

YAML and JSON files are checked against the catalog schema first; nothing is
written when the document does not match. Records with an id update the
existing record (or create it under that id); records without one are created.
Records that fail validation are reported and skipped, and the command then
exits with status 1.

CSV files use the old till export: category;description;unit;price;tax`,
		Example: `  precario import catalog.yaml
  precario import --format json precos.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			path := args[0]
			if _, err := importer.FormatFromPath(path); err != nil {
				return usageError(f, err.Error())
			}

			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			im, err := a.importer()
			if err != nil {
				return f.Fail("load catalog schema", err)
			}

			f.VerboseLog("Importing %s", path)
			res, err := im.ImportFile(cmd.Context(), path)
			if err != nil {
				return documentError(f, path, err)
			}

			if err := f.Result(res, func(w io.Writer) { writeImportResult(w, path, res) }); err != nil {
				return err
			}
			if res.Failed() {
				return NewExitError(ExitFailure, fmt.Sprintf("%s: %d record(s) rejected", ErrCodeImport, len(res.Failures)))
			}
			return nil
		},
	}

	return cmd
}

func writeImportResult(w io.Writer, path string, res importer.Result) {
	fmt.Fprintf(w, "Imported %s\n", path)
	fmt.Fprintf(w, "  products: %d created, %d updated, %d failed\n", res.Products.Created, res.Products.Updated, res.Products.Failed)
	fmt.Fprintf(w, "  queues:   %d created, %d updated, %d failed\n", res.Queues.Created, res.Queues.Updated, res.Queues.Failed)
	writeFailures(w, res.Failures)
}

func writeFailures(w io.Writer, failures []importer.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "✗ Rejected records")
	for _, fl := range failures {
		id := fl.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "  %s[%d] %s: %s\n", fl.Collection, fl.Index, id, fl.Message)
	}
}

// documentError reports a file that could not be read or parsed. Schema
// violations list every issue.
func documentError(f *OutputFormatter, path string, err error) error {
	var schemaErr *importer.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		if f.Format == "json" {
			_ = f.Error(ErrCodeSchema, fmt.Sprintf("%s does not match the catalog schema", path), schemaErr.Issues)
		} else {
			fmt.Fprintf(f.Writer, "✗ %s does not match the catalog schema\n\n", path)
			for _, is := range schemaErr.Issues {
				if is.Path != "" {
					fmt.Fprintf(f.Writer, "  %s: %s\n", is.Path, is.Message)
				} else {
					fmt.Fprintf(f.Writer, "  %s\n", is.Message)
				}
			}
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("%s: schema validation failed with %d issue(s)", ErrCodeSchema, len(schemaErr.Issues)), err)
	case errors.Is(err, fs.ErrNotExist):
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("file not found: %s", path), nil)
		return WrapExitError(ExitCommandError, ErrCodeNotFound+": file not found", err)
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return usageError(f, err.Error())
	default:
		return f.Fail("import "+path, err)
	}
}
