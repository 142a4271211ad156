package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chemsource/supplier-cli/internal/country"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List country codes accepted by --exclude and --only",
	Run: func(cmd *cobra.Command, _ []string) {
		codes := country.Codes()
		keys := make([]string, 0, len(codes))
		for code := range codes {
			keys = append(keys, code)
		}
		sort.Strings(keys)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tCOUNTRY")
		for _, code := range keys {
			fmt.Fprintf(tw, "%s\t%s\n", code, codes[code])
		}
		_ = tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(countriesCmd)
}
