package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/pipeline"
	"github.com/sells-group/georesolve/internal/store"
)

var (
	exhaustedDays  int
	exhaustedRerun bool
)

var exhaustedCmd = &cobra.Command{
	Use:   "exhausted",
	Short: "List objects left at their region center, optionally re-resolving them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		days := exhaustedDays
		if days < 0 {
			days = cfg.Store.RetryDays
		}

		var (
			st  store.Store
			env *resolverEnv
			err error
		)
		if exhaustedRerun {
			env, err = initResolver(ctx)
			if err != nil {
				return err
			}
			defer env.Close()
			st = env.Store
		} else {
			st, err = store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		locs, err := st.ListExhausted(ctx, cutoff)
		if err != nil {
			return err
		}
		printExhausted(cmd.OutOrStdout(), locs)

		if !exhaustedRerun || len(locs) == 0 {
			return nil
		}

		refs := make([]model.ObjectRef, len(locs))
		for i, l := range locs {
			refs[i] = l.Object
		}
		b := &pipeline.Batch{Resolver: env.Resolver, Concurrency: cfg.Batch.MaxConcurrent}
		outcomes, stats := b.Run(ctx, refs)
		rerun, err := settleSuspended(ctx, env.Resolver, outcomes, nil, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := saveLocations(ctx, st, rerun); err != nil {
			return err
		}
		stats.Log()
		env.alert(ctx, stats)
		zap.L().Info("exhausted objects re-run", zap.Int("objects", len(refs)), zap.Int("resolved", stats.Resolved()))
		fmt.Fprintln(cmd.OutOrStdout(), stats.String())
		return nil
	},
}

func init() {
	exhaustedCmd.Flags().IntVar(&exhaustedDays, "older-than-days", -1, "only objects exhausted at least this many days ago (default store.retry_days)")
	exhaustedCmd.Flags().BoolVar(&exhaustedRerun, "rerun", false, "run the pipeline again for the listed objects")
	rootCmd.AddCommand(exhaustedCmd)
}

func printExhausted(w io.Writer, locs []model.ResolvedLocation) {
	if len(locs) == 0 {
		fmt.Fprintln(w, "no exhausted objects due for retry")
		return
	}
	for _, l := range locs {
		at := "-"
		if l.ExhaustedAt != nil {
			at = l.ExhaustedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%-12s %s rejected=%d\n", l.Object.ID, at, len(l.Rejected))
	}
}
