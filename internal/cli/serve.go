package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/startpage/internal/app"
	"github.com/MrSnakeDoc/startpage/internal/config"
	"github.com/MrSnakeDoc/startpage/internal/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(cfg.LogLevel, cfg.PrettyLog)

			a, err := app.New(cfg, log)
			if err != nil {
				log.Error("startup failed", logger.Error(err))
				return err
			}
			return a.Run()
		},
	}
}
