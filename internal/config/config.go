package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pinwatch/internal/collect"
)

// EnvPrefix prefixes environment overrides, e.g. PINWATCH_MAX_DEPTH.
const EnvPrefix = "PINWATCH"

// Config is the resolved configuration for one run.
type Config struct {
	KnownBad        string
	MaxDepth        int
	JSON            bool
	OutDir          string
	Recursive       bool
	Parallel        bool
	NoLockfile      bool
	NoNodeModules   bool
	MetricsTextfile string
	NoColor         bool
	Verbose         bool
	LogFile         string
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault("known_bad", "")
	viper.SetDefault("max_depth", collect.DefaultMaxDepth)
	viper.SetDefault("json", false)
	viper.SetDefault("out", "")
	viper.SetDefault("recursive", false)
	viper.SetDefault("parallel", false)
	viper.SetDefault("no_lockfile", false)
	viper.SetDefault("no_node_modules", false)
	viper.SetDefault("metrics_textfile", "")
	viper.SetDefault("no_color", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
}

// Load initializes the configuration from an optional .env file, a config
// file and environment variables. Without cfgFile, pinwatch.yaml in the
// working directory is used when present. A missing default config file is
// not an error; an explicit one that cannot be read is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("pinwatch")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && (errors.As(err, &notFound) || os.IsNotExist(err)) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	slog.Debug("Using config file", "path", viper.ConfigFileUsed())
	return nil
}

// FromViper builds a Config from the global viper instance.
func FromViper() Config {
	return Config{
		KnownBad:        viper.GetString("known_bad"),
		MaxDepth:        viper.GetInt("max_depth"),
		JSON:            viper.GetBool("json"),
		OutDir:          viper.GetString("out"),
		Recursive:       viper.GetBool("recursive"),
		Parallel:        viper.GetBool("parallel"),
		NoLockfile:      viper.GetBool("no_lockfile"),
		NoNodeModules:   viper.GetBool("no_node_modules"),
		MetricsTextfile: viper.GetString("metrics_textfile"),
		NoColor:         viper.GetBool("no_color"),
		Verbose:         viper.GetBool("verbose"),
		LogFile:         viper.GetString("log_file"),
	}
}
