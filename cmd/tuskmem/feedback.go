package main

import (
	"context"

	"github.com/spf13/cobra"
)

var feedbackFlags struct {
	injected []string
	utilized []string
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record which injected memories were actually used",
	Example: `  tuskmem feedback --injected a,b,c --utilized b`,
	RunE: runWithApp(func(ctx context.Context, cmd *cobra.Command, _ []string, a *app) error {
		res, err := a.svc.Feedback(ctx, feedbackFlags.utilized, feedbackFlags.injected)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}),
}

func init() {
	f := feedbackCmd.Flags()
	f.StringSliceVarP(&feedbackFlags.injected, "injected", "i", nil, "names of every memory that was offered")
	f.StringSliceVarP(&feedbackFlags.utilized, "utilized", "u", nil, "names of the memories that helped")
	_ = feedbackCmd.MarkFlagRequired("injected")

	rootCmd.AddCommand(feedbackCmd)
}
