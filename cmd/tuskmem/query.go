package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/spf13/cobra"
)

var queryFlags struct {
	kind             string
	limit            int
	minEffectiveness float64
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Rank stored memories against a task or error description",
	Args:  cobra.MinimumNArgs(1),
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		req := memory.QueryRequest{
			Text:             strings.Join(args, " "),
			Limit:            queryFlags.limit,
			MinEffectiveness: queryFlags.minEffectiveness,
		}
		if queryFlags.kind != "" {
			kind, ok := core.ParseKind(queryFlags.kind)
			if !ok {
				return fmt.Errorf("unknown kind %q", queryFlags.kind)
			}
			req.Kind = &kind
		}

		res, err := a.svc.Query(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}),
}

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryFlags.kind, "kind", "k", "", "only return memories of this kind")
	f.IntVarP(&queryFlags.limit, "limit", "n", 0, "maximum number of results (default from TUSKMEM_DEFAULT_LIMIT)")
	f.Float64Var(&queryFlags.minEffectiveness, "min-effectiveness", 0, "skip memories below this effectiveness")

	rootCmd.AddCommand(queryCmd)
}
