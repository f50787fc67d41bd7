package cmd

import (
	"context"
	"errors"
	"syscall"

	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/control"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"pid"},
	Short:   "Run temperature-based fan control",
	Long: `Runs the adaptive control loop: temperatures are sampled
periodically, a response curve plus a PID trim controller compute the next
fan speed target, a rate limiter smooths the trajectory and the result is
applied through the selected backend. Stops on interrupt or when the
optional runtime bound elapses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		backend, err := selectBackend(ctx)
		if err != nil {
			return err
		}

		if err = backend.Probe(); err != nil {
			_ = backend.Close()
			return err
		}

		config := configuration.CurrentConfig
		controller := config.Controller

		ui.Info("PID temperature control via %s backend - target: %.1f°C, interval: %s",
			backend.Name(), controller.TargetTemp, controller.Interval)
		if config.AutoRestore {
			ui.Info("Automatic fan control will be restored on exit")
		}

		loop := control.NewLoop(backend, control.SessionConfig{
			TargetTemp:       controller.TargetTemp,
			Interval:         controller.Interval,
			P:                controller.P,
			I:                controller.I,
			D:                controller.D,
			MinSpeed:         controller.MinSpeed,
			MaxSpeed:         controller.MaxSpeed,
			MaxStepDelta:     controller.MaxStepDelta,
			RampSteps:        controller.RampSteps,
			RampFactor:       controller.RampFactor,
			FailureTolerance: controller.FailureTolerance,
			Runtime:          controller.Runtime,
			AutoRestore:      config.AutoRestore,
		}, printCycleStatus)

		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		var g run.Group
		g.Add(func() error {
			return loop.Run(loopCtx)
		}, func(err error) {
			cancel()
		})
		g.Add(run.SignalHandler(loopCtx, syscall.SIGINT, syscall.SIGTERM))

		err = g.Run()

		var signalErr run.SignalError
		if errors.As(err, &signalErr) {
			ui.Info("Received %s, shutting down", signalErr.Signal)
			return nil
		}
		return err
	},
}

func printCycleStatus(status control.Status) {
	ui.Info("Temp: %.1f°C (avg %.1f°C) | Target: %.1f°C | Fan: %d%%",
		status.Temperature, status.AverageTemp, status.TargetTemp, status.AppliedPercent)
	ui.Debug("Controller terms: error %.2f, baseline %.2f, P %.3f, I %.3f, D %.3f",
		status.Terms.Error, status.Terms.Baseline, status.Terms.Proportional,
		status.Terms.Integral, status.Terms.Derivative)
}

func init() {
	runCmd.Flags().Float64P("target", "t", 60.0, "Target temperature in Celsius (env: IPMI_CONTROLLER_TARGETTEMP)")
	runCmd.Flags().Duration("interval", 0, "Sampling interval (env: IPMI_CONTROLLER_INTERVAL)")
	runCmd.Flags().Float64("p", 0.1, "Proportional gain (env: IPMI_CONTROLLER_P)")
	runCmd.Flags().Float64("i", 0.02, "Integral gain (env: IPMI_CONTROLLER_I)")
	runCmd.Flags().Float64("d", 0.01, "Derivative gain (env: IPMI_CONTROLLER_D)")
	runCmd.Flags().Float64("min", 30.0, "Minimum fan speed percentage (env: IPMI_CONTROLLER_MINSPEED)")
	runCmd.Flags().Float64("max", 100.0, "Maximum fan speed percentage (env: IPMI_CONTROLLER_MAXSPEED)")
	runCmd.Flags().Float64("max-step-delta", 10.0, "Maximum fan speed change per control step (env: IPMI_CONTROLLER_MAXSTEPDELTA)")
	runCmd.Flags().Int("ramp-steps", 5, "Number of reduced-delta steps after start (env: IPMI_CONTROLLER_RAMPSTEPS)")
	runCmd.Flags().Float64("ramp-factor", 0.5, "Step delta reduction factor during ramp-up, within (0..1] (env: IPMI_CONTROLLER_RAMPFACTOR)")
	runCmd.Flags().Int("failure-tolerance", 3, "Consecutive backend failures tolerated before aborting (env: IPMI_CONTROLLER_FAILURETOLERANCE)")
	runCmd.Flags().Duration("time", 0, "Total runtime bound, runs until interrupted if zero (env: IPMI_CONTROLLER_RUNTIME)")

	flags := runCmd.Flags()
	_ = viper.BindPFlag("controller.targettemp", flags.Lookup("target"))
	_ = viper.BindPFlag("controller.interval", flags.Lookup("interval"))
	_ = viper.BindPFlag("controller.p", flags.Lookup("p"))
	_ = viper.BindPFlag("controller.i", flags.Lookup("i"))
	_ = viper.BindPFlag("controller.d", flags.Lookup("d"))
	_ = viper.BindPFlag("controller.minspeed", flags.Lookup("min"))
	_ = viper.BindPFlag("controller.maxspeed", flags.Lookup("max"))
	_ = viper.BindPFlag("controller.maxstepdelta", flags.Lookup("max-step-delta"))
	_ = viper.BindPFlag("controller.rampsteps", flags.Lookup("ramp-steps"))
	_ = viper.BindPFlag("controller.rampfactor", flags.Lookup("ramp-factor"))
	_ = viper.BindPFlag("controller.failuretolerance", flags.Lookup("failure-tolerance"))
	_ = viper.BindPFlag("controller.runtime", flags.Lookup("time"))

	rootCmd.AddCommand(runCmd)
}
