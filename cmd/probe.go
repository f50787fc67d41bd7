package cmd

import (
	"context"
	"time"

	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/spf13/cobra"
)

var probeFull bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test Dell server compatibility",
	Long: `Checks that the management controller is reachable, that fan and
temperature sensors can be read and, with --full, that manual fan control
works by briefly taking over and releasing the fans.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := selectBackend(context.Background())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		ui.Info("Testing connection via %s backend...", backend.Name())
		if err = backend.Probe(); err != nil {
			return err
		}
		ui.Success("Connection OK")

		ui.Info("Reading fan sensors...")
		fans, err := backend.ReadFanSpeeds()
		if err != nil {
			return err
		}
		if len(fans) == 0 {
			ui.Warning("No fans detected")
		} else {
			ui.Success("Found %d fans", len(fans))
		}

		ui.Info("Reading temperature sensors...")
		temps, err := backend.ReadTemperatures()
		if err != nil {
			return err
		}
		if len(temps) == 0 {
			ui.Warning("No temperature sensors detected")
		} else {
			ui.Success("Found %d temperature sensors", len(temps))
		}

		if probeFull {
			ui.Info("Testing manual fan control...")
			if err = backend.SetManualMode(true); err != nil {
				return err
			}
			ui.Success("Manual mode enabled")

			ui.Info("Setting fan speed to 50%%...")
			if err = backend.SetFanSpeed(50); err != nil {
				return err
			}
			ui.Success("Fan speed set")

			// brief pause to let the fans adjust
			time.Sleep(2 * time.Second)

			ui.Info("Returning to automatic control...")
			if err = backend.RestoreAutomaticMode(); err != nil {
				return err
			}
			ui.Success("Automatic control restored")
		}

		ui.Success("Compatibility test passed")
		if len(temps) > 0 {
			format.PrintTable(format.TemperatureTable(temps))
		}
		if len(fans) > 0 {
			format.PrintTable(format.FanTable(fans))
		}
		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeFull, "full", false, "Also test manual fan control by briefly taking over the fans")
	rootCmd.AddCommand(probeCmd)
}
