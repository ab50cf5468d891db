package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apihttp "github.com/GriffinCanCode/WebDesk/backend/internal/api/http"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/server"
)

var globalOpts struct {
	configPath string
	dev        bool
	port       string
}

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "webdesk",
	Short: "Desktop-in-a-browser backend",
	Long: `webdesk serves a simulated desktop session to browsers.

It owns the window collection, the boot and shutdown sequence, the
per-window application state and the assistant chat, and pushes every
change to connected browsers over a WebSocket.

Running webdesk without a subcommand starts the server.`,
	Version:      apihttp.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFile(globalOpts.configPath)
		if err != nil {
			return err
		}
		if globalOpts.dev {
			cfg.Logging.Development = true
			cfg.Logging.Level = "debug"
		}
		if globalOpts.port != "" {
			cfg.Server.Port = globalOpts.port
		}
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP, WebSocket and gRPC health servers",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.configPath, "config", "c", "",
		"TOML config file overlaid on environment settings")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.dev, "dev", false,
		"Development mode (colored logs, debug level)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.port, "port", "p", "",
		"HTTP port (overrides PORT)")

	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(cfg, server.Options{})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	return srv.Run(ctx)
}
