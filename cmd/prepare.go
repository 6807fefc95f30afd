package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/demandcast/app"
	"github.com/kilianp07/demandcast/config"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the hourly demand table from raw order events",
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
		table, err := svc.Prepare(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("prepared %d hourly demand rows at %s\n", len(table), cfg.Run.TablePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}
