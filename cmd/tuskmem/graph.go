package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/spf13/cobra"
)

var relateWeight float64

var relateCmd = &cobra.Command{
	Use:   "relate <from> <to> <rel_type>",
	Short: "Add a directed edge (co_occurs|causes|solves|similar) between two memories",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		res, err := a.svc.Relate(ctx, memory.RelateRequest{
			From:    args[0],
			To:      args[1],
			RelType: args[2],
			Weight:  relateWeight,
		})
		if err != nil {
			return err
		}
		return printRelate(cmd, res)
	}),
}

var reinforceDelta float64

var reinforceCmd = &cobra.Command{
	Use:   "reinforce <from> <to> <rel_type>",
	Short: "Increase the weight of an existing edge",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		res, err := a.svc.Reinforce(ctx, args[0], args[1], args[2], reinforceDelta)
		if err != nil {
			return err
		}
		return printRelate(cmd, res)
	}),
}

var relatedHops int

var relatedCmd = &cobra.Command{
	Use:   "related <name>",
	Short: "List memories reachable from a memory, nearest first",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		res, err := a.svc.Related(ctx, args[0], relatedHops)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}),
}

func printRelate(cmd *cobra.Command, res memory.RelateResult) error {
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.Status == memory.StatusRejected {
		return fmt.Errorf("rejected: %s", res.Reason)
	}
	return nil
}

func init() {
	relateCmd.Flags().Float64VarP(&relateWeight, "weight", "w", memory.DefaultEdgeWeight, "edge weight")
	reinforceCmd.Flags().Float64Var(&reinforceDelta, "delta", 1.0, "amount added to the weight")
	relatedCmd.Flags().IntVar(&relatedHops, "hops", 2, "maximum traversal depth")

	rootCmd.AddCommand(relateCmd, reinforceCmd, relatedCmd)
}
