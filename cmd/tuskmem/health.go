package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	healthJSON   bool
	verifyStrict bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show store statistics",
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		h, err := a.svc.Health(ctx)
		if err != nil {
			return err
		}
		if healthJSON {
			return printJSON(cmd.OutOrStdout(), h)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), ui.RenderHealth(h))
		return err
	}),
}

var errLoopOpen = errors.New("learning loop is OPEN")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that memories exist and feedback has been recorded",
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		v, err := a.svc.Verify(ctx)
		if err != nil {
			return err
		}
		if healthJSON {
			err = printJSON(cmd.OutOrStdout(), v)
		} else {
			_, err = fmt.Fprint(cmd.OutOrStdout(), ui.RenderVerification(v))
		}
		if err != nil {
			return err
		}
		if verifyStrict && v.Status != memory.VerifyClosed {
			return errLoopOpen
		}
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{healthCmd, verifyCmd} {
		c.Flags().BoolVar(&healthJSON, "json", false, "print JSON instead of a report")
	}
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "exit non-zero unless the loop is CLOSED")

	rootCmd.AddCommand(healthCmd, verifyCmd)
}
