package main

import (
	"fmt"
	"os"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/internal/config"
	"github.com/meikuraledutech/flow/internal/logging"
	"github.com/meikuraledutech/flow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:           "flow-server",
		Short:         "Serve the flow builder graph API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.New(level)

			opts := append(cfg.EditorOptions(), flow.WithLogger(logger))
			var store flow.Store = memory.New(opts...)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			app := newApp(store, logger, reg)
			logger.Info("listening", "addr", cfg.Server.Addr)
			return app.Listen(cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config file")
	return cmd
}
