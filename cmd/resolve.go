package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/export"
	"github.com/sells-group/georesolve/internal/input"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/pipeline"
	"github.com/sells-group/georesolve/internal/provider"
	"github.com/sells-group/georesolve/internal/store"
)

var (
	resolveInput       string
	resolveGeoJSON     string
	resolveXLSX        string
	resolveConcurrency int
	resolveInteractive bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [id...]",
	Short: "Resolve objects to coordinates",
	Long:  "Resolves the objects listed in --input (JSON, CSV or XLSX) and any ids given as arguments, saves each resolution and optionally exports GeoJSON and an audit workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		refs, err := collectRefs(resolveInput, args)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return eris.New("no objects to resolve: pass ids or --input")
		}

		env, err := initResolver(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := resolveConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		b := &pipeline.Batch{Resolver: env.Resolver, Concurrency: concurrency}
		outcomes, stats := b.Run(ctx, refs)

		var prompt *bufio.Reader
		if resolveInteractive {
			prompt = bufio.NewReader(os.Stdin)
		}
		locs, err := settleSuspended(ctx, env.Resolver, outcomes, prompt, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := saveLocations(ctx, env.Store, locs); err != nil {
			return err
		}

		stats.Log()
		env.alert(ctx, stats)
		fmt.Fprintln(cmd.OutOrStdout(), stats.String())

		return writeExports(locs, resolveGeoJSON, resolveXLSX)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveInput, "input", "", "object list (.json, .csv or .xlsx)")
	resolveCmd.Flags().StringVar(&resolveGeoJSON, "geojson", "", "write resolved points as GeoJSON to this path")
	resolveCmd.Flags().StringVar(&resolveXLSX, "xlsx", "", "write an audit workbook to this path")
	resolveCmd.Flags().IntVar(&resolveConcurrency, "concurrency", 0, "objects resolved in parallel (default from config)")
	resolveCmd.Flags().BoolVar(&resolveInteractive, "interactive", false, "prompt for objects no provider could place")
	rootCmd.AddCommand(resolveCmd)
}

// collectRefs merges the input file with ids given on the command line.
func collectRefs(path string, ids []string) ([]model.ObjectRef, error) {
	var refs []model.ObjectRef
	if path != "" {
		r, err := input.ReadObjects(path)
		if err != nil {
			return nil, err
		}
		refs = r
	}
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		seen[r.ID] = true
	}
	for _, id := range ids {
		ref, err := model.ParseObjectRef(id)
		if err != nil {
			return nil, err
		}
		if !seen[ref.ID] {
			seen[ref.ID] = true
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func storeSink(st store.Store) pipeline.Sink {
	return func(ctx context.Context, o *pipeline.Outcome) error {
		if o.Location == nil {
			return nil
		}
		saved, err := st.SaveResolution(ctx, o.Location)
		if err != nil {
			return err
		}
		if !saved {
			zap.L().Info("kept stored resolution with higher confidence",
				zap.String("object", o.Object.ID),
				zap.String("confidence", string(o.Location.Confidence)),
			)
		}
		return nil
	}
}

// saveLocations writes a finished batch to the store in one call.
func saveLocations(ctx context.Context, st store.Store, locs []model.ResolvedLocation) error {
	sum, err := store.SaveAll(ctx, st, locs)
	if err != nil {
		return err
	}
	zap.L().Info("resolutions saved",
		zap.Int64("written", sum.Written),
		zap.Int64("kept_stored", sum.Kept),
	)
	return nil
}

// settleSuspended finishes every suspended run, asking the operator when
// prompt is set and canceling otherwise, and returns all final locations.
func settleSuspended(ctx context.Context, r *pipeline.Resolver, outcomes []pipeline.Outcome, prompt *bufio.Reader, w io.Writer) ([]model.ResolvedLocation, error) {
	locs := make([]model.ResolvedLocation, 0, len(outcomes))
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", o.Object.ID, o.Err)
			continue
		}
		if o.Suspended {
			var err error
			o, err = settle(ctx, r, o, prompt, w)
			if err != nil {
				return nil, err
			}
		}
		if o.Location != nil {
			locs = append(locs, *o.Location)
		}
	}
	return locs, nil
}

func settle(ctx context.Context, r *pipeline.Resolver, o *pipeline.Outcome, prompt *bufio.Reader, w io.Writer) (*pipeline.Outcome, error) {
	for o.Suspended {
		if prompt == nil {
			return r.Cancel(o.Token)
		}

		fmt.Fprintf(w, "\n%s (region %s) needs a location.\n", o.Object.ID, o.Object.RegionCode)
		for _, rej := range o.Rejected {
			fmt.Fprintf(w, "  %s: %s %s\n", rej.Provider, rej.Reason, rej.Detail)
		}
		fmt.Fprint(w, "Enter \"lat, lng\", an address, or nothing to skip: ")

		line, err := prompt.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return r.Cancel(o.Token)
			}
			return nil, eris.Wrap(err, "read operator input")
		}

		o, err = r.Resume(ctx, o.Token, provider.ParseInput(strings.TrimSpace(line)))
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

func writeExports(locs []model.ResolvedLocation, geojsonPath, xlsxPath string) error {
	if geojsonPath != "" {
		f, err := os.Create(geojsonPath)
		if err != nil {
			return eris.Wrap(err, "create geojson file")
		}
		if err := export.WriteGeoJSON(f, locs); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "close geojson file")
		}
		zap.L().Info("geojson written", zap.String("path", geojsonPath), zap.Int("locations", len(locs)))
	}
	if xlsxPath != "" {
		if err := export.WriteWorkbook(xlsxPath, locs); err != nil {
			return err
		}
		zap.L().Info("workbook written", zap.String("path", xlsxPath), zap.Int("locations", len(locs)))
	}
	return nil
}
