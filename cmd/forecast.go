package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/demandcast/app"
	"github.com/kilianp07/demandcast/config"
	"github.com/kilianp07/demandcast/pkg/export"
)

var (
	planJSON string
	planCSV  string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run the pipeline once and emit the staffing plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		ev, err := svc.Run(cmd.Context())
		if err != nil {
			return err
		}
		if planCSV != "" {
			f, err := os.Create(planCSV)
			if err != nil {
				return err
			}
			if err := export.WriteCSV(f, ev.Plan.Records); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		if planJSON != "" {
			f, err := os.Create(planJSON)
			if err != nil {
				return err
			}
			if err := export.WriteJSON(f, ev.Plan); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}
		return export.WriteJSON(os.Stdout, ev.Plan)
	},
}

func init() {
	forecastCmd.Flags().StringVar(&planJSON, "json", "", "write the plan as JSON to this file (default stdout)")
	forecastCmd.Flags().StringVar(&planCSV, "csv", "", "also write the plan records as CSV to this file")
	rootCmd.AddCommand(forecastCmd)
}
