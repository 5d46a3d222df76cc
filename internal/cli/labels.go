package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/precario/internal/config"
	"github.com/roach88/precario/internal/label"
)

// newPrinter builds the HTML to PDF converter for --pdf.
var newPrinter = func(cfg *config.Config, logger *zap.Logger) label.HTMLToPDF {
	return &label.ChromePrinter{
		Bin:     cfg.Labels.PDF.Bin,
		Timeout: cfg.GetPDFTimeout(),
		Logger:  logger,
	}
}

// LabelsRenderResult describes a sheet written to a file.
type LabelsRenderResult struct {
	File   string `json:"file"`
	Format string `json:"format"`
	Labels int    `json:"labels"`
	Bytes  int    `json:"bytes"`
}

// NewLabelsCommand creates the labels command group.
func NewLabelsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Render shelf labels",
	}
	cmd.AddCommand(newLabelsRenderCommand(rootOpts))
	return cmd
}

func newLabelsRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out    string
		pdf    bool
		inline bool
		paper  string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the print sheet for products marked for printing",
		Long: `Render the label sheet for every product marked for printing.

The sheet is HTML unless --pdf is given, in which case a headless Chrome
prints it (labels.pdf in the config selects the browser). Without --out the
document goes to stdout.`,
		Example: `  precario labels render --out etiquetas.html --inline-assets
  precario labels render --pdf --out etiquetas.pdf --paper Letter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			pageSize, ok := paperSize(paper)
			if !ok {
				return usageError(f, fmt.Sprintf("unknown paper %q (want A4 or Letter)", paper))
			}

			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			assets := &label.Assets{
				Dir:       a.cfg.Labels.AssetsDir,
				URLPrefix: a.cfg.Labels.AssetsDir,
				Inline:    inline || pdf,
			}
			renderer, err := label.NewRenderer(assets, a.metrics)
			if err != nil {
				return f.Fail("load label templates", err)
			}

			products, err := a.svc.Printable(cmd.Context())
			if err != nil {
				return f.Fail("list printable products", err)
			}
			f.VerboseLog("Rendering %d label(s) on %s", len(products), pageSize)

			opts := label.SheetOptions{Title: "Etiquetas", PageSize: pageSize}
			format := label.FormatHTML
			var doc bytes.Buffer
			if pdf {
				format = label.FormatPDF
				data, err := renderer.PDF(cmd.Context(), newPrinter(a.cfg, a.logger), products, opts)
				if err != nil {
					return f.Fail("render pdf", err)
				}
				doc.Write(data)
			} else if err := renderer.Sheet(&doc, products, opts); err != nil {
				return f.Fail("render sheet", err)
			}

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(doc.Bytes())
				return err
			}
			if err := os.WriteFile(out, doc.Bytes(), 0o644); err != nil {
				_ = f.Error(ErrCodeWriteFailed, fmt.Sprintf("write %s: %v", out, err), nil)
				return WrapExitError(ExitCommandError, ErrCodeWriteFailed+": write sheet", err)
			}

			result := LabelsRenderResult{File: out, Format: format, Labels: len(products), Bytes: doc.Len()}
			return f.Result(result, func(w io.Writer) {
				fmt.Fprintf(w, "Wrote %d label(s) to %s\n", result.Labels, out)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "print to PDF through headless Chrome")
	cmd.Flags().BoolVar(&inline, "inline-assets", false, "embed label images as data URIs")
	cmd.Flags().StringVar(&paper, "paper", "A4", "paper size: A4 or Letter")

	return cmd
}

func paperSize(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a4":
		return "A4", true
	case "letter":
		return "Letter", true
	}
	return "", false
}
