package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ipmifan/ipmifan/cmd/global"
	"github.com/ipmifan/ipmifan/internal/configuration"
	"github.com/ipmifan/ipmifan/internal/format"
	"github.com/ipmifan/ipmifan/internal/ipmi"
	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ipmifan",
	Short: "Control fan speeds on Dell servers via IPMI.",
	Long: `ipmifan reads temperature and fan telemetry from a Dell server's
management controller and drives fan speeds using vendor-specific
raw commands, either via the ipmitool executable or a persistent
IPMI session.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is ./ipmifan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	rootCmd.PersistentFlags().StringP("host", "H", "localhost", "BMC hostname or IP address (env: IPMI_HOST)")
	rootCmd.PersistentFlags().IntP("port", "P", 623, "BMC port (env: IPMI_PORT)")
	rootCmd.PersistentFlags().StringP("username", "u", "", "BMC username (env: IPMI_USERNAME)")
	rootCmd.PersistentFlags().StringP("password", "p", "", "BMC password (env: IPMI_PASSWORD)")
	rootCmd.PersistentFlags().StringP("interface", "i", "lanplus", "IPMI interface type, lanplus or lan (env: IPMI_INTERFACE)")
	rootCmd.PersistentFlags().Bool("debug", false, "Surface raw backend requests and responses (env: IPMI_DEBUG)")
	rootCmd.PersistentFlags().Bool("auto-restore", true, "Restore automatic fan control on exit (env: IPMI_AUTORESTORE)")
	rootCmd.PersistentFlags().Bool("prefer-tool", true, "Prefer the ipmitool backend when available (env: IPMI_PREFERTOOL)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format, one of: table | json | yaml (env: IPMI_OUTPUT)")
}

func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("host", flags.Lookup("host"))
	_ = viper.BindPFlag("port", flags.Lookup("port"))
	_ = viper.BindPFlag("username", flags.Lookup("username"))
	_ = viper.BindPFlag("password", flags.Lookup("password"))
	_ = viper.BindPFlag("interface", flags.Lookup("interface"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("autorestore", flags.Lookup("auto-restore"))
	_ = viper.BindPFlag("prefertool", flags.Lookup("prefer-tool"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose || configuration.CurrentConfig.Debug)

	format.NoColor = global.NoColor
	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// loadConfiguration resolves the configuration from file, environment and
// flags and validates it. Called by every leaf command.
func loadConfiguration() error {
	configPath := configuration.DetectAndReadConfigFile()
	configuration.LoadConfig()
	setupUi()

	if configPath != "" && configuration.CurrentConfig.Output == configuration.OutputTable {
		ui.Info("Using configuration file at: %s", configPath)
	}

	return configuration.Validate()
}

func backendConfig() ipmi.Config {
	config := configuration.CurrentConfig
	return ipmi.Config{
		Host:           config.Host,
		Port:           config.Port,
		Username:       config.Username,
		Password:       config.Password,
		Interface:      config.Interface,
		PreferTool:     config.PreferTool,
		Debug:          config.Debug,
		CommandTimeout: config.CommandTimeout,
	}
}

// selectBackend loads the configuration and binds the active backend for
// this invocation
func selectBackend(ctx context.Context) (ipmi.Backend, error) {
	if err := loadConfiguration(); err != nil {
		return nil, err
	}

	backend, err := ipmi.SelectBackend(ctx, backendConfig())
	if err != nil {
		return nil, err
	}
	ui.Debug("Using %s backend", backend.Name())
	return backend, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
		bindFlags()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
