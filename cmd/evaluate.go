package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/demandcast/app"
	"github.com/kilianp07/demandcast/config"
	"github.com/kilianp07/demandcast/core/forecast"
	"github.com/kilianp07/demandcast/core/model"
	"github.com/kilianp07/demandcast/infra/store"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the forecaster on the held-out window",
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

		table, err := store.LoadTable(cfg.Run.TablePath)
		if err != nil {
			if table, err = svc.Prepare(cmd.Context()); err != nil {
				return err
			}
		}
		series := filterRestaurant(table, cfg.Run.RestaurantID)
		holdout := time.Duration(cfg.Run.HoldoutDays) * 24 * time.Hour
		eval, err := forecast.Evaluate(forecast.New(cfg.Forecast), series, holdout, cfg.Run.BaselineMAPE)
		if err != nil {
			return err
		}
		fmt.Printf("train=%dh test=%dh accuracy=%.1f%% improvement=%.1f%% vs baseline\n",
			eval.TrainHours, eval.TestHours, eval.Accuracy, eval.Improvement)
		return nil
	},
}

func filterRestaurant(table []model.HourlyDemand, id string) []model.HourlyDemand {
	if id == "" {
		id = app.BusiestRestaurant(table)
	}
	out := make([]model.HourlyDemand, 0, len(table))
	for _, row := range table {
		if row.RestaurantID == id {
			out = append(out, row)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
