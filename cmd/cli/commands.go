package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"custlens/adapters/excel"
	"custlens/adapters/tabular"
	"custlens/domain/customer"
	"custlens/domain/stats"
	"custlens/internal/analysis"
	"custlens/internal/container"
	"custlens/internal/report"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// criteriaFlags holds the filter flags shared by summary and export.
type criteriaFlags struct {
	ageMin, ageMax int
	city, category string
	topN           int
	recordLimit    int
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.ageMin, "age-min", customer.DefaultAgeMin, "Minimum age (inclusive)")
	cmd.Flags().IntVar(&f.ageMax, "age-max", customer.DefaultAgeMax, "Maximum age (inclusive)")
	cmd.Flags().StringVar(&f.city, "city", customer.All, "City or All")
	cmd.Flags().StringVar(&f.category, "category", customer.All, "Product category or All")
	cmd.Flags().IntVar(&f.topN, "top-n", 0, "Rows in the top purchases table")
	cmd.Flags().IntVar(&f.recordLimit, "record-limit", 0, "Cap the raw records table (0 keeps all)")
}

func (f *criteriaFlags) compute(cmd *cobra.Command, c *container.Container) (*stats.Dashboard, error) {
	criteria := c.Config.DefaultCriteria()
	if cmd.Flags().Changed("age-min") {
		criteria.AgeMin = f.ageMin
	}
	if cmd.Flags().Changed("age-max") {
		criteria.AgeMax = f.ageMax
	}
	criteria.City = f.city
	criteria.ProductCategory = f.category

	opts := c.DashboardOptions()
	if f.topN > 0 {
		opts.TopN = f.topN
	}
	opts.RecordLimit = f.recordLimit
	return c.Dashboards.Compute(cmd.Context(), criteria, opts)
}

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the dataset to an xlsx or csv file",
		Long: `Synthesize (or import) the customer dataset and write it out.

Example: custlens-cli generate --rows 5000 --seed 42 --out customers.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(v)
			if err != nil {
				return err
			}
			ds, err := c.Source.Dataset()
			if err != nil {
				return err
			}

			if err := writeFile(out, func(w io.Writer) error {
				if strings.EqualFold(filepath.Ext(out), ".csv") {
					return tabular.WriteCSV(analysis.RecordsTable(stats.TableRecords, "Customers", ds.Records()), w)
				}
				return excel.WriteDataset(ds.Records(), w)
			}); err != nil {
				return err
			}
			p := ds.Params()
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows (seed %d) to %s\n", p.NumRows, p.Seed, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "customers.xlsx", "Output file (.xlsx or .csv)")
	return cmd
}

func newSummaryCmd(v *viper.Viper) *cobra.Command {
	var flags criteriaFlags
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard for one filter selection",
		Long: `Compute every dashboard table for the given filters and print it.

Example: custlens-cli summary --city Tokyo --age-min 25 --age-max 45 --record-limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(v)
			if err != nil {
				return err
			}
			d, err := flags.compute(cmd, c)
			if err != nil {
				return err
			}

			switch format {
			case "markdown", "md":
				fmt.Fprint(cmd.OutOrStdout(), report.Markdown(d))
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			default:
				return fmt.Errorf("unknown format %q (use markdown or json)", format)
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown|json")
	return cmd
}

func newSweepCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compute the dashboard for every preset concurrently",
		Long: `Run every preset (from --presets, PRESETS_FILE, or one per city) and
print one line of key metrics per preset.

Example: custlens-cli sweep --presets presets.yaml --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(v)
			if err != nil {
				return err
			}
			results, err := c.Sweeps.Run(cmd.Context(), c.Presets, c.DashboardOptions())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRESET\tROWS\tAVG PURCHASE\tTOTAL PURCHASES\tTOP CITY")
			for _, r := range results {
				m := r.Dashboard.Metrics
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					r.Preset.Name, r.Dashboard.RowCount,
					report.Format(m.AveragePurchase), report.Format(m.TotalPurchases), m.MostCommonCity)
			}
			return tw.Flush()
		},
	}
	return cmd
}

func newExportCmd(v *viper.Viper) *cobra.Command {
	var flags criteriaFlags
	var out, table string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard as an xlsx workbook or one table as csv",
		Long: `Export the dashboard for the given filters.

Examples:
  custlens-cli export --out dashboard.xlsx --city Paris
  custlens-cli export --table age_group_pivot --out pivot.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(v)
			if err != nil {
				return err
			}
			d, err := flags.compute(cmd, c)
			if err != nil {
				return err
			}

			if table == "" {
				if err := writeFile(out, func(w io.Writer) error { return excel.WriteWorkbook(d, w) }); err != nil {
					return err
				}
			} else {
				t := d.Table(table)
				if t == nil {
					return fmt.Errorf("unknown table %q (have %s)", table, strings.Join(d.TableNames(), ", "))
				}
				if err := writeFile(out, func(w io.Writer) error { return tabular.WriteCSV(t, w) }); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nwrote %s\n", d.Summary, out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "dashboard.xlsx", "Output file")
	cmd.Flags().StringVar(&table, "table", "", "Export only this table as csv")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
