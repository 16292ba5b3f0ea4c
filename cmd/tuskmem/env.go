package main

import (
	"fmt"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/pkg/env"
	"github.com/spf13/cobra"
)

var envAll bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration in .env format",
	Long:  `Prints the configuration after loading ` + "`<runtime>/.env`" + ` and the process environment. The output can be saved as the .env file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetEnvFilePath()); err != nil {
			return err
		}

		out, err := env.MarshalEnv(envAll,
			config.NewAppConfig(ctx),
			config.NewStoreConfig(ctx),
			config.NewEmbeddingConfig(ctx),
		)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	envCmd.Flags().BoolVar(&envAll, "all", false, "include empty and zero values")
	rootCmd.AddCommand(envCmd)
}
