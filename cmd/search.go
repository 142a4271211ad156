package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemsource/supplier-cli/internal/country"
	"github.com/chemsource/supplier-cli/internal/discover"
	"github.com/chemsource/supplier-cli/internal/model"
)

var (
	searchLimit   int
	searchExclude string
	searchOnly    string
	searchOutput  string
)

var searchCmd = &cobra.Command{
	Use:   "search <chemical-name> <cas-number>",
	Short: "Find suppliers for a chemical, verified against its CAS number",
	Example: `  supplier-cli search "Eucalyptol" "470-82-6"
  supplier-cli search "N-Methyl-2-pyrrolidone" "872-50-4" --exclude cn,de
  supplier-cli search "Acetone" "67-64-1" --only "United States,Canada" --limit 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		query := model.ChemicalQuery{
			Name:             args[0],
			CAS:              args[1],
			Limit:            searchLimit,
			AllowedCountries: country.CanonicalNames(splitList(searchOnly)),
			DeniedCountries:  country.CanonicalNames(splitList(searchExclude)),
		}
		if err := query.Validate(); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var runID string
		if env.Store != nil {
			run, err := env.Store.CreateRun(ctx, query)
			if err != nil {
				return err
			}
			runID = run.ID
			if err := env.Store.MarkRunning(ctx, runID); err != nil {
				return err
			}
		}

		fmt.Printf("Searching for: %s (CAS %s)\n", query.Name, query.CAS)

		report, err := env.Pipeline.Discover(ctx, query)
		if err != nil {
			if runID != "" {
				if ferr := env.Store.FailRun(ctx, runID, err); ferr != nil {
					zap.L().Warn("record failed run", zap.Error(ferr))
				}
			}
			return err
		}
		if runID != "" {
			if err := env.Store.CompleteRun(ctx, runID, &report.Result); err != nil {
				zap.L().Warn("record completed run", zap.Error(err))
			}
		}

		printSuppliers(report.Result.Suppliers)
		if n := len(report.Failed); n > 0 {
			fmt.Printf("\n%d candidate page(s) could not be fetched; retry details are in the output file.\n", n)
		}

		outPath := searchOutput
		if outPath == "" {
			outPath = defaultOutputPath(query)
		}
		if err := writeReportJSON(outPath, report); err != nil {
			return err
		}
		fmt.Printf("\nFull results saved to: %s\n", outPath)
		return nil
	},
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func printSuppliers(suppliers []model.SupplierRecord) {
	fmt.Printf("Found %d suppliers\n", len(suppliers))
	fmt.Println(strings.Repeat("=", 80))

	for i, sup := range suppliers {
		fmt.Printf("\n%d. %s\n", i+1, sup.Name)
		fmt.Printf("   Website: %s\n", sup.Website)
		fmt.Printf("   Country: %s\n", sup.Country)
		if len(sup.Emails) > 0 {
			for _, email := range sup.Emails {
				fmt.Printf("   Email: %s [%s]\n", email.Address, email.Provenance)
			}
		} else {
			fmt.Println("   Email: Not found")
		}
		fmt.Printf("   Evidence: %s (%s)\n", sup.Evidence.EvidenceURL, sup.Evidence.Status)
		fmt.Printf("   Confidence: %.2f/10\n", sup.Confidence)
	}
}

func defaultOutputPath(query model.ChemicalQuery) string {
	name := strings.ReplaceAll(query.Name, " ", "_")
	cas := strings.ReplaceAll(query.CAS, "-", "_")
	return name + "_" + cas + ".json"
}

// writeReportJSON saves the full run report, including any candidates whose
// pages failed to fetch, so a later run can retry them.
func writeReportJSON(path string, report *discover.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create output file %s", path)
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(report), "write output file")
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of suppliers to return")
	searchCmd.Flags().StringVar(&searchExclude, "exclude", "", "comma-separated countries to exclude (codes or names)")
	searchCmd.Flags().StringVar(&searchOnly, "only", "", "comma-separated countries to include only (codes or names)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "output JSON path (default <name>_<cas>.json)")
	rootCmd.AddCommand(searchCmd)
}
