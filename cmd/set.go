package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/control"
	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <percentage>",
	Short: "Set fan speed to a specific percentage ([0..100])",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		percent, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		if percent < 0 || percent > 100 {
			return fmt.Errorf("fan speed percentage must be between 0 and 100, got %d", percent)
		}

		backend, err := selectBackend(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		if err := control.SetFanSpeedOnce(backend, percent); err != nil {
			return err
		}

		output := configuration.CurrentConfig.Output
		if output == configuration.OutputTable {
			ui.Success("Fan speed set to %d%%", percent)
			ui.Info("Fans are now in manual mode, run 'ipmifan auto' to restore automatic control")
			return nil
		}

		data := struct {
			Result   string `json:"result" yaml:"result"`
			FanSpeed int    `json:"fanSpeed" yaml:"fanSpeed"`
		}{Result: "success", FanSpeed: percent}
		return format.PrintData(output, data)
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
