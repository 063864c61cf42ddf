package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/batlab/internal/analysis"
	"codeberg.org/mutker/batlab/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultDataDir    = "data"
	DefaultMinSamples = 10
	DefaultGroupBy    = "config"
	DefaultWorkers    = 1
	DefaultLogLevel   = LogLevelWarning
	DefaultDBPath     = "data/batlab.db"

	defaultEnvPrefix  = "BATLAB"
	configFileName    = "batlab"
	configFileType    = "toml"
	configPathEnvName = "CONFIG"
)

type Config struct {
	DataDir     string      `mapstructure:"data_dir"`
	MinSamples  int         `mapstructure:"min_samples"`
	GroupBy     string      `mapstructure:"group_by"`
	Baseline    string      `mapstructure:"baseline"`
	Workers     int         `mapstructure:"workers"`
	LogLevel    string      `mapstructure:"log_level"`
	Debug       bool        `mapstructure:"debug"`
	Verbose     bool        `mapstructure:"verbose"`
	MetricsFile string      `mapstructure:"metrics_file"`
	Store       StoreConfig `mapstructure:"store"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"data-dir":     "data_dir",
	"min-samples":  "min_samples",
	"group-by":     "group_by",
	"baseline":     "baseline",
	"workers":      "workers",
	"log-level":    "log_level",
	"debug":        "debug",
	"verbose":      "verbose",
	"metrics-file": "metrics_file",
	"store":        "store.enabled",
	"db-path":      "store.db_path",
}

// Load resolves the configuration from defaults, the config file, BATLAB_*
// environment variables and args, in increasing precedence. A single
// positional argument overrides the data directory.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		opt(o)
	}

	fs := pflag.NewFlagSet("batlab", pflag.ContinueOnError)
	fs.String("config", "", "Path to a TOML configuration file")
	fs.String("data-dir", DefaultDataDir, "Directory holding run logs")
	fs.Int("min-samples", DefaultMinSamples, "Minimum valid samples for a run to be kept")
	fs.String("group-by", DefaultGroupBy, "Group runs by config, os or workload")
	fs.String("baseline", "", "Group to compare power draw against")
	fs.Int("workers", DefaultWorkers, "Run logs analyzed concurrently")
	fs.String("log-level", DefaultLogLevel.String(), "Log level: debug, info, warning, error")
	fs.Bool("debug", false, "Enable debug logging")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	fs.Bool("store", false, "Persist summaries to SQLite")
	fs.String("db-path", DefaultDBPath, "SQLite database path")

	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("min_samples", DefaultMinSamples)
	v.SetDefault("group_by", DefaultGroupBy)
	v.SetDefault("baseline", "")
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("log_level", DefaultLogLevel.String())
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("metrics_file", "")
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.db_path", DefaultDBPath)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	if err := readConfigFile(v, configPath(o, fs)); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		v.Set("data_dir", fs.Arg(0))
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	// Set log level based on debug and verbose flags
	if config.Debug {
		config.LogLevel = LogLevelDebug.String()
	} else if config.Verbose && config.LogLevel == DefaultLogLevel.String() {
		config.LogLevel = LogLevelInfo.String()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.MinSamples < 0 {
		return errFactory.WithData(errors.ErrInvalidMinSamples, c.MinSamples)
	}
	if c.Workers < 1 {
		return errFactory.WithData(errors.ErrInvalidWorkers, c.Workers)
	}
	if !analysis.GroupKey(c.GroupBy).IsValid() {
		return errFactory.WithData(errors.ErrInvalidGroupBy, c.GroupBy)
	}
	if c.Store.Enabled && c.Store.DBPath == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "store enabled without a database path")
	}
	return nil
}

// configPath picks the config file: explicit option, then --config, then
// the <PREFIX>_CONFIG environment variable. Empty means search the defaults.
func configPath(o *options, fs *pflag.FlagSet) string {
	if o.configPath != "" {
		return o.configPath
	}
	if path, _ := fs.GetString("config"); path != "" {
		return path
	}
	return os.Getenv(o.envPrefix + "_" + configPathEnvName)
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configFileType)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath("/etc")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}
	return nil
}
