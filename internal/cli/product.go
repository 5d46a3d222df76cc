package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/precario/internal/catalog"
)

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage catalog products",
	}

	cmd.AddCommand(newProductListCommand(rootOpts))
	cmd.AddCommand(newProductAddCommand(rootOpts))
	cmd.AddCommand(newProductUpdateCommand(rootOpts))
	cmd.AddCommand(newProductDeleteCommand(rootOpts))
	cmd.AddCommand(newProductPrintCommand(rootOpts))
	cmd.AddCommand(newProductDuplicateCommand(rootOpts))

	return cmd
}

func newProductListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		sortField string
		desc      bool
		printable bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Long: `List products ordered by description, or by --sort.

Sortable fields: category, description, unit, price, labelSize, taxStatus, print.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if sortField != "" && !catalog.SortField(sortField).Valid() {
				return usageError(f, fmt.Sprintf("unknown sort field %q (valid: %v)", sortField, catalog.SortFields()))
			}

			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			sort := catalog.DefaultSort()
			if sortField != "" {
				sort.Field = catalog.SortField(sortField)
			}
			sort.Desc = desc

			products, err := a.svc.Products(cmd.Context(), sort)
			if err != nil {
				return f.Fail("list products", err)
			}
			if printable {
				products = catalog.Printable(products)
			}

			return f.Result(products, func(w io.Writer) {
				writeProducts(w, products)
			})
		},
	}

	cmd.Flags().StringVar(&sortField, "sort", "", "sort field (default description)")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&printable, "printable", false, "only products marked for printing")

	return cmd
}

func writeProducts(w io.Writer, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No products."))
		return
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.ID,
			p.Description,
			string(p.Category),
			catalog.DisplayPrice(p.Price) + " €/" + p.Unit.Suffix(),
			string(p.LabelSize),
			yesNo(p.TaxStatus),
			yesNo(p.Print),
		})
	}
	writeTable(w, []string{"ID", "DESCRIPTION", "CATEGORY", "PRICE", "LABEL", "TAX", "PRINT"}, rows)
	fmt.Fprintf(w, "\n%d of %d marked for printing\n", catalog.CountPrintable(products), len(products))
}

func writeProduct(w io.Writer, verb string, p catalog.Product) {
	fmt.Fprintf(w, "%s %s: %s (%s €/%s, %s, %s)\n",
		verb, p.ID, p.Description, catalog.DisplayPrice(p.Price), p.Unit.Suffix(), p.Category, p.LabelSize)
}

// productFlags are the editable product fields as flags. Only flags the user
// set are applied, so update leaves the rest of the record alone.
type productFlags struct {
	description string
	price       string
	category    string
	unit        string
	labelSize   string
	tax         bool
	print       bool
}

func (pf *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.description, "description", "", "label text")
	cmd.Flags().StringVar(&pf.price, "price", "", `price, e.g. "24,95" or "24.95"`)
	cmd.Flags().StringVar(&pf.category, "category", "", "category, e.g. VACA, QUEIJO, MERCEARIA")
	cmd.Flags().StringVar(&pf.unit, "unit", "", "KG or UN")
	cmd.Flags().StringVar(&pf.labelSize, "label-size", "", "Normal or Small")
	cmd.Flags().BoolVar(&pf.tax, "tax", false, "reduced tax rate applies")
	cmd.Flags().BoolVar(&pf.print, "print", false, "include in the next label sheet")
}

func (pf *productFlags) apply(cmd *cobra.Command, in *catalog.ProductInput) {
	changed := cmd.Flags().Changed
	if changed("description") {
		in.Description = pf.description
	}
	if changed("price") {
		in.Price = pf.price
	}
	if changed("category") {
		in.Category = catalog.Category(strings.ToUpper(strings.TrimSpace(pf.category)))
	}
	if changed("unit") {
		in.Unit = catalog.Unit(strings.ToUpper(strings.TrimSpace(pf.unit)))
	}
	if changed("label-size") {
		in.LabelSize = parseLabelSize(pf.labelSize)
	}
	if changed("tax") {
		in.TaxStatus = pf.tax
	}
	if changed("print") {
		in.Print = pf.print
	}
}

func parseLabelSize(s string) catalog.LabelSize {
	s = strings.TrimSpace(s)
	for _, size := range catalog.LabelSizes() {
		if strings.EqualFold(s, string(size)) {
			return size
		}
	}
	return catalog.LabelSize(s)
}

func newProductAddCommand(rootOpts *RootOptions) *cobra.Command {
	var pf productFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Long: `Create a product. Unset fields take the new-product defaults:
category MERCEARIA, unit UN, Normal label, marked for printing.`,
		Example: `  precario product add --description "PICANHA ANGUS#IRLANDA" --price 24,95 --category VACA --unit KG`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			in := catalog.DefaultProductInput()
			pf.apply(cmd, &in)

			p, err := a.svc.CreateProduct(cmd.Context(), in)
			if err != nil {
				return f.Fail("create product", err)
			}
			return f.Result(p, func(w io.Writer) { writeProduct(w, "Created", p) })
		},
	}
	pf.register(cmd)

	return cmd
}

func newProductUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var pf productFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change fields of a product",
		Example: `  precario product update product_1700000000000 --price 26,50`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.svc.Product(cmd.Context(), args[0])
			if err != nil {
				return f.Fail("update product", err)
			}
			in := current.Input()
			pf.apply(cmd, &in)

			p, err := a.svc.UpdateProduct(cmd.Context(), args[0], in)
			if err != nil {
				return f.Fail("update product", err)
			}
			return f.Result(p, func(w io.Writer) { writeProduct(w, "Updated", p) })
		},
	}
	pf.register(cmd)

	return cmd
}

func newProductDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return f.Fail("delete product", err)
			}
			return f.Result(map[string]string{"id": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
}

func newProductPrintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "print <id> on|off",
		Short:     "Mark or unmark a product for printing",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var print bool
			switch strings.ToLower(args[1]) {
			case "on", "true", "yes":
				print = true
			case "off", "false", "no":
				print = false
			default:
				return usageError(f, fmt.Sprintf("expected on or off, got %q", args[1]))
			}

			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.SetPrint(cmd.Context(), args[0], print); err != nil {
				return f.Fail("set print", err)
			}
			p, err := a.svc.Product(cmd.Context(), args[0])
			if err != nil {
				return f.Fail("set print", err)
			}
			return f.Result(p, func(w io.Writer) {
				if p.Print {
					fmt.Fprintf(w, "%s marked for printing\n", p.ID)
				} else {
					fmt.Fprintf(w, "%s no longer marked for printing\n", p.ID)
				}
			})
		},
	}
}

func newProductDuplicateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a product under a new id",
		Long:  `Copy a product. The copy's description gets " (Copy)" appended and it is not marked for printing.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			a, err := rootOpts.openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.svc.DuplicateProduct(cmd.Context(), args[0])
			if err != nil {
				return f.Fail("duplicate product", err)
			}
			return f.Result(p, func(w io.Writer) { writeProduct(w, "Created", p) })
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
