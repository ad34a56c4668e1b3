package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/matthew-spillane/VenomScan/config"
	"github.com/matthew-spillane/VenomScan/internal/api"
)

// serveCmd is the cobra command that starts the scan API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the scan api server",
	Run: func(cmd *cobra.Command, _ []string) {
		err := serve(cmd.Context())
		cobra.CheckErr(err)
	},
}

// init registers the serve command on the root command
func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve initializes dependencies and starts the scan API server
func serve(ctx context.Context) error {
	cfg, err := config.Load(k.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	coordinator, err := buildCoordinator(cfg)
	if err != nil {
		return fmt.Errorf("setting up scan coordinator: %w", err)
	}

	handler := api.NewRouter(coordinator)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      http.MaxBytesHandler(handler, cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Server.Port).Msg("starting venomscan service")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
