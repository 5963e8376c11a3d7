package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var initDataCmd = &cobra.Command{
	Use:   "init-data",
	Short: "Create the data file or schema if it does not exist",
	Long:  `Checks the configured store is reachable and creates an empty one when missing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := commonSetUp()
		ctx := context.Background()

		st, closeStore, err := newStore(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize store")
		}
		defer closeStore()

		if err := st.Initialize(ctx); err != nil {
			log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to initialize data")
		}

		log.Info().Str("backend", cfg.Store.Backend).Str("path", cfg.Store.Path).Msg("Data store ready")
	},
}

func init() {
	rootCmd.AddCommand(initDataCmd)
}
