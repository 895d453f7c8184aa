package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/geo"
)

var (
	addressRegion string
	addressJSON   bool
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Extract address candidates from OCR text on stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		region, ok := table.Lookup(addressRegion)
		if !ok {
			return eris.Errorf("unknown region %q", addressRegion)
		}

		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return eris.Wrap(err, "read stdin")
		}

		engine := address.NewEngine(address.WithWeights(cfg.Pipeline.Weights))
		return printCandidates(cmd.OutOrStdout(), engine, string(text), region, addressJSON)
	},
}

func init() {
	addressCmd.Flags().StringVar(&addressRegion, "region", "", "region code the text was photographed in")
	addressCmd.Flags().BoolVar(&addressJSON, "json", false, "print candidates as JSON")
	_ = addressCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(addressCmd)
}

func printCandidates(w io.Writer, engine *address.Engine, text string, region geo.RegionProfile, asJSON bool) error {
	lines := address.FilterLines(address.SplitText(text))
	cands := engine.Extract(lines, region)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cands)
	}

	if len(cands) == 0 {
		fmt.Fprintf(w, "no address found in %d usable lines\n", len(lines))
		return nil
	}
	for i, c := range cands {
		std, notes := address.Standardize(c.Text, region)
		fmt.Fprintf(w, "%2d. [%s %3d] %s\n", i+1, c.Kind, c.Score, std)
		if len(notes) > 0 {
			fmt.Fprintf(w, "      %s\n", strings.Join(notes, "; "))
		}
	}
	return nil
}
