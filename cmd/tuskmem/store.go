package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/spf13/cobra"
)

var storeFlags memory.StoreRequest

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a lesson, merging it into a near-duplicate if one exists",
	Example: `  tuskmem store --trigger "ImportError: circular import in auth module" \
    --resolution "Move the import inside the function body"`,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		res, err := a.svc.Store(ctx, storeFlags)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if res.Status == memory.StatusRejected {
			return fmt.Errorf("rejected: %s", res.Reason)
		}
		return nil
	}),
}

func init() {
	f := storeCmd.Flags()
	f.StringVarP(&storeFlags.Trigger, "trigger", "t", "", "when this memory applies")
	f.StringVarP(&storeFlags.Resolution, "resolution", "r", "", "what to do")
	f.StringVarP(&storeFlags.Kind, "kind", "k", "failure", "failure|pattern|fact|decision|convention|evolution")
	f.StringVar(&storeFlags.Name, "name", "", "explicit name (default: slug of the trigger)")
	f.StringVar(&storeFlags.Source, "source", "", "origin of the lesson, e.g. a task id")
	f.Float64Var(&storeFlags.Cost, "cost", 0, "how expensive the lesson was to learn")
	_ = storeCmd.MarkFlagRequired("trigger")
	_ = storeCmd.MarkFlagRequired("resolution")

	rootCmd.AddCommand(storeCmd)
}
