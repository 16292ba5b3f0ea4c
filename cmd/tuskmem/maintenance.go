package main

import (
	"context"

	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/spf13/cobra"
)

var pruneFlags struct {
	minEffectiveness float64
	minUses          int
	dryRun           bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete well-exercised memories that keep failing",
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		req := memory.PruneRequest{DryRun: pruneFlags.dryRun}
		if cmd.Flags().Changed("min-effectiveness") {
			req.MinEffectiveness = &pruneFlags.minEffectiveness
		}
		if cmd.Flags().Changed("min-uses") {
			req.MinUses = &pruneFlags.minUses
		}
		res, err := a.svc.Prune(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}),
}

var decayDays int

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "List memories that have not been used for a long time",
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		res, err := a.svc.Decay(ctx, decayDays)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}),
}

var consolidateFlags memory.ConsolidateRequest

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge near-duplicate memories, summing their feedback",
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		res, err := a.svc.Consolidate(ctx, consolidateFlags)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}),
}

func init() {
	f := pruneCmd.Flags()
	f.Float64Var(&pruneFlags.minEffectiveness, "min-effectiveness", 0, "prune below this effectiveness (default from TUSKMEM_PRUNE_MIN_EFFECTIVENESS)")
	f.IntVar(&pruneFlags.minUses, "min-uses", 0, "feedback events required before pruning (default from TUSKMEM_PRUNE_MIN_USES)")
	f.BoolVar(&pruneFlags.dryRun, "dry-run", false, "report without deleting")

	decayCmd.Flags().IntVar(&decayDays, "days", 0, "unused for more than this many days (default from TUSKMEM_DECAY_UNUSED_DAYS)")

	consolidateCmd.Flags().Float64Var(&consolidateFlags.Threshold, "threshold", 0, "similarity threshold (default from TUSKMEM_DEDUP_THRESHOLD)")
	consolidateCmd.Flags().BoolVar(&consolidateFlags.DryRun, "dry-run", false, "report without merging")

	rootCmd.AddCommand(pruneCmd, decayCmd, consolidateCmd)
}
