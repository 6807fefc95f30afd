package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/demandcast/app"
	"github.com/kilianp07/demandcast/config"
	"github.com/kilianp07/demandcast/infra/logger"
	"github.com/kilianp07/demandcast/infra/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Re-run the pipeline on an interval, exposing metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.New("main").Errorf("service close: %v", err)
			}
		}()

		if cfg.Metrics.PrometheusEnabled {
			go func() {
				if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusPort); err != nil {
					logger.New("main").Errorf("prom server: %v", err)
				}
			}()
		}

		log := logger.New("serve")
		events := svc.Events()
		go func() {
			for ev := range events {
				log.Debugw("run completed", map[string]any{
					"run_id":         ev.Record.RunID,
					"orders":         ev.Record.Summary.TotalPredictedOrders,
					"partners_saved": ev.Record.Summary.PartnersSaved,
				})
			}
		}()
		return svc.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
