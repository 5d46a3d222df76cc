package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/precario/internal/importer"
)

// ExportResult describes a catalog written to a file.
type ExportResult struct {
	File     string `json:"file"`
	Format   string `json:"format"`
	Products int    `json:"products"`
	Queues   int    `json:"queues"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out string
		as  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog as YAML or JSON",
		Long: `Write every product and queue in the import format, so the output can be
fed back to "precario import" or dropped into the import inbox.

Without --as the format follows the --out extension, YAML by default.`,
		Example: `  precario export --out backup.yaml
  precario export --as json > catalog.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			format, err := exportFormat(as, out)
			if err != nil {
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
			doc, err := im.Snapshot(cmd.Context())
			if err != nil {
				return f.Fail("export catalog", err)
			}

			var buf bytes.Buffer
			if err := importer.Encode(&buf, doc, format); err != nil {
				return f.Fail("export catalog", err)
			}

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				_ = f.Error(ErrCodeWriteFailed, fmt.Sprintf("write %s: %v", out, err), nil)
				return WrapExitError(ExitCommandError, ErrCodeWriteFailed+": write export", err)
			}

			result := ExportResult{File: out, Format: string(format), Products: len(doc.Products), Queues: len(doc.Queues)}
			return f.Result(result, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d product(s) and %d queue(s) to %s\n", result.Products, result.Queues, out)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&as, "as", "", "yaml or json")

	return cmd
}

func exportFormat(as, out string) (importer.Format, error) {
	var (
		format importer.Format
		err    error
	)
	switch {
	case as != "":
		format, err = importer.ParseFormat(as)
	case out != "" && out != "-":
		format, err = importer.FormatFromPath(out)
	default:
		return importer.FormatYAML, nil
	}
	if err != nil {
		return "", err
	}
	if format == importer.FormatCSV {
		return "", fmt.Errorf("csv is import-only; export as yaml or json")
	}
	return format, nil
}
