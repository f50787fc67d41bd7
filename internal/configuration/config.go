package configuration

import (
	"os"
	"strings"
	"time"

	"github.com/ipmifan/ipmifan/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Interface string `json:"interface"`

	PreferTool  bool   `json:"preferTool"`
	Debug       bool   `json:"debug"`
	AutoRestore bool   `json:"autoRestore"`
	Output      string `json:"output"`

	CommandTimeout time.Duration `json:"commandTimeout"`

	Controller ControllerConfig `json:"controller"`
}

type ControllerConfig struct {
	TargetTemp float64       `json:"targetTemp"`
	Interval   time.Duration `json:"interval"`

	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`

	MinSpeed float64 `json:"minSpeed"`
	MaxSpeed float64 `json:"maxSpeed"`

	MaxStepDelta float64 `json:"maxStepDelta"`
	RampSteps    int     `json:"rampSteps"`
	RampFactor   float64 `json:"rampFactor"`

	FailureTolerance int `json:"failureTolerance"`

	Runtime time.Duration `json:"runtime"`
}

const (
	OutputTable = "table"
	OutputJson  = "json"
	OutputYaml  = "yaml"
)

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("ipmifan")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/ipmifan/")
	}

	viper.SetEnvPrefix("ipmi")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", 623)
	viper.SetDefault("username", "")
	viper.SetDefault("password", "")
	viper.SetDefault("interface", "lanplus")

	viper.SetDefault("prefertool", true)
	viper.SetDefault("debug", false)
	viper.SetDefault("autorestore", true)
	viper.SetDefault("output", OutputTable)

	viper.SetDefault("commandtimeout", 10*time.Second)

	viper.SetDefault("controller.targettemp", 60.0)
	viper.SetDefault("controller.interval", 30*time.Second)
	viper.SetDefault("controller.p", 0.1)
	viper.SetDefault("controller.i", 0.02)
	viper.SetDefault("controller.d", 0.01)
	viper.SetDefault("controller.minspeed", 30.0)
	viper.SetDefault("controller.maxspeed", 100.0)
	viper.SetDefault("controller.maxstepdelta", 10.0)
	viper.SetDefault("controller.rampsteps", 5)
	viper.SetDefault("controller.rampfactor", 0.5)
	viper.SetDefault("controller.failuretolerance", 3)
	viper.SetDefault("controller.runtime", time.Duration(0))
}

// DetectAndReadConfigFile reads the config file if one is found. The config
// file is optional, all values have defaults and can come from flags or the
// environment.
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			ui.Fatal("Error reading config file, %s", err)
		}
	}
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
