package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vz415/BridgeVentilator/internal/config"
	"github.com/vz415/BridgeVentilator/internal/drive"
	"github.com/vz415/BridgeVentilator/internal/handlers"
	"github.com/vz415/BridgeVentilator/internal/logger"
	"github.com/vz415/BridgeVentilator/internal/repository"
	"github.com/vz415/BridgeVentilator/internal/repository/db"
	"github.com/vz415/BridgeVentilator/internal/server"
	"github.com/vz415/BridgeVentilator/internal/service"
	"github.com/vz415/BridgeVentilator/internal/version"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	// configPath stores the path to the configuration YAML file.
	configPath string

	rootCmd = &cobra.Command{
		Use:   "bridgevent",
		Short: "Bag-valve ventilator actuator controller.",
		Long: `Control service for a bag-valve-mask ventilator actuator.

Runs the breath cycle engine against a servo drive, persists an audit trail
and telemetry snapshots to SQLite, and serves the operator HTTP/WebSocket API.`,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run()
		},
	}
)

func main() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default configs/config.yml)")
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.Get(cfg.LogLevel)

	// open DB
	conn, err := db.Init(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// open the drive output (log sink or gpio pwm)
	out, err := drive.New(cfg.Drive.Output, cfg.Drive.Pin, log)
	if err != nil {
		log.Fatalw("failed to init drive output", "err", err, "output", cfg.Drive.Output)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Errorw("failed to close drive output", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		MinPulseUS:        cfg.Actuator.MinPulseUS,
		MaxPulseUS:        cfg.Actuator.MaxPulseUS,
		MaxStepPerTick:    cfg.Actuator.MaxStepPerTick,
		MinStrokeFraction: cfg.Breath.MinStrokeFraction,
		SigningKey:        cfg.Auth.SigningKey,
		TokenTTL:          cfg.Auth.TokenTTL,
		Output:            out,
		Logger:            log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines, cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// breath engine and telemetry recorder
	go services.Engine.Run(ctx, cfg.Engine.Tick)
	go services.Recorder.Run(ctx, cfg.Engine.TelemetryInterval)

	// start HTTP server
	srv := &server.Server{}
	go func() {
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			log.Infow("http server stopped", "err", err)
			stop()
		}
	}()

	log.Infow("bridgevent up",
		"version", version.Short(),
		"port", cfg.Port,
		"drive", cfg.Drive.Output,
		"engine_tick", cfg.Engine.Tick,
	)

	<-ctx.Done()
	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
		return err
	}
	return nil
}
