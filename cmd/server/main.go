package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "wildlife-threat-api/configs"
	"wildlife-threat-api/pkg/app"
	"wildlife-threat-api/pkg/dataset"
	"wildlife-threat-api/pkg/logger"
	"wildlife-threat-api/pkg/services"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Wildlife threat prediction and explanation API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil {
				// The environment alone is a valid configuration.
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s not loaded: %v\n", envFile, err)
			}
			cfg := config.LoadConfig()
			if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.LoadConfig())
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSpeciesCommand())
	cmd.AddCommand(newPredictCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Train the model and serve HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.LoadConfig())
		},
	}
}

func newSpeciesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "species",
		Short: "Print every species name in the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			ds, err := dataset.Load(cfg.DataPath)
			if err != nil {
				return err
			}
			for _, name := range ds.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newPredictCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <species name>",
		Short: "Train the model and print the prediction for one species as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(cmd.Context(), config.LoadConfig())
			if err != nil {
				return err
			}
			return printPrediction(cmd.Context(), cmd.OutOrStdout(), a.Prediction, args[0])
		},
	}
}

func printPrediction(ctx context.Context, w io.Writer, svc *services.PredictionService, species string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	prediction, err := svc.Predict(ctx, species)
	if errors.Is(err, services.ErrSpeciesNotFound) {
		return enc.Encode(map[string]string{"error": "Species not found."})
	}
	if err != nil {
		return err
	}
	return enc.Encode(prediction)
}

func serve(ctx context.Context, cfg *config.Config) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		return err
	}

	srv := newHTTPServer(":"+cfg.Port, a.Router())

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting Wildlife Threat API server",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
