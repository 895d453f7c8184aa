package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/store"
)

var (
	exportGeoJSON       string
	exportXLSX          string
	exportRegion        string
	exportMinConfidence string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored resolutions as GeoJSON or an audit workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportGeoJSON == "" && exportXLSX == "" {
			return eris.New("nothing to export: pass --geojson and/or --xlsx")
		}

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		locs, err := st.ListResolutions(cmd.Context(), store.Filter{
			RegionCode:    exportRegion,
			MinConfidence: model.ParseConfidence(exportMinConfidence),
		})
		if err != nil {
			return err
		}
		zap.L().Info("exporting resolutions", zap.Int("count", len(locs)))
		return writeExports(locs, exportGeoJSON, exportXLSX)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportGeoJSON, "geojson", "", "GeoJSON output path")
	exportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "audit workbook output path")
	exportCmd.Flags().StringVar(&exportRegion, "region", "", "only this region")
	exportCmd.Flags().StringVar(&exportMinConfidence, "min-confidence", "", "low, medium or high")
	rootCmd.AddCommand(exportCmd)
}
