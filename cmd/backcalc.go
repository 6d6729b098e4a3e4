package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ovrim/windcurb/infra/logger"
)

var backcalcCmd = &cobra.Command{
	Use:   "backcalc",
	Short: "Back-calculate hub wind speeds from observed production",
	RunE:  runBackCalc,
}

func init() {
	rootCmd.AddCommand(backcalcCmd)
}

func runBackCalc(cmd *cobra.Command, args []string) error {
	svc, ctx, stop, err := newService()
	if err != nil {
		return err
	}
	defer stop()
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("backcalc-command").Errorf("service close: %v", err)
		}
	}()
	return svc.RunBackCalc(ctx)
}
