package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/georesolve/internal/geo"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [code]",
	Short: "List known regions or show one region profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return showRegion(cmd.OutOrStdout(), table, args[0])
		}
		listRegions(cmd.OutOrStdout(), table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}

func listRegions(w io.Writer, table *geo.Table) {
	for _, code := range table.Codes() {
		p, _ := table.Lookup(code)
		radius := "unbounded"
		if !p.Unbounded {
			radius = fmt.Sprintf("%.0f km", p.MaxRadiusMeters/1000)
		}
		fmt.Fprintf(w, "%-8s %-20s %-3s %-6s %s\n", p.Code, p.Name, p.CountryCode, p.Locale, radius)
	}
}

func showRegion(w io.Writer, table *geo.Table, code string) error {
	p, ok := table.Lookup(code)
	if !ok {
		return eris.Errorf("unknown region %q", code)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
