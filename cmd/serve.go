package cmd

import (
	"os/signal"
	"syscall"

	"github.com/thariqabe666/finalproj-group-2/internal/api"
	"github.com/thariqabe666/finalproj-group-2/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			return err
		}

		config, err := getConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, cleanup, err := buildEngine(ctx, config, log)
		if err != nil {
			return err
		}
		defer cleanup()

		server := api.NewServer(engine, log)
		if err := server.ListenAndServe(ctx, config.Server.Listen); err != nil {
			return err
		}

		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
