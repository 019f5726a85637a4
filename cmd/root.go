package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	catalogCmd "github.com/mercadito/catalog/catalog/cmd"
	"github.com/mercadito/catalog/internal/constants"
	"github.com/mercadito/catalog/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/catalog.log").
		With().
		Str(log.KeyAppName, constants.AppCatalogService).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "catalog"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run catalog aggregation service",
		Run: func(cmd *cobra.Command, args []string) {
			catalogCmd.RunCatalogService(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
