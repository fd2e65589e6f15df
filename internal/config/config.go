package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/muesli/termenv"
)

const (
	KITTEN_APP_NAME     = "kitten"
	CONFIG_FILE_RELPATH = KITTEN_APP_NAME + "/config.yaml"
	LOG_LEVEL_ENV_VAR   = "KITTEN_LOG_LEVEL"
	DEFAULT_DEBOUNCE    = 200 * time.Millisecond
	MIN_WATCH_DEBOUNCE  = 10 * time.Millisecond
	DEFAULT_LOG_LEVEL   = ""
)

// Config is the configuration of the command line tool, it is read from
// $XDG_CONFIG_HOME/kitten/config.yaml and overridden by environment variables.
type Config struct {
	// LogLevel is the zerolog level of the compiler logs, empty disables logging.
	LogLevel string `yaml:"log-level"`

	ShowBytecode  bool          `yaml:"show-bytecode"`
	WatchDebounce time.Duration `yaml:"watch-debounce"`

	// set from the environment
	Colorize bool `yaml:"-"`
}

func Default() Config {
	return Config{
		LogLevel:      DEFAULT_LOG_LEVEL,
		WatchDebounce: DEFAULT_DEBOUNCE,
	}
}

// Load reads the configuration file if it exists and applies the environment.
func Load() (Config, error) {
	config := Default()

	path, err := xdg.SearchConfigFile(CONFIG_FILE_RELPATH)
	if err == nil {
		config, err = LoadFile(path)
		if err != nil {
			return Config{}, err
		}
	}

	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// LoadFile reads a configuration file, missing keys keep their default value.
func LoadFile(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return Config{}, err
	}

	if err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict()); err != nil {
		return Config{}, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	if config.WatchDebounce < MIN_WATCH_DEBOUNCE {
		return Config{}, fmt.Errorf("invalid configuration file %s: watch-debounce should be at least %s", path, MIN_WATCH_DEBOUNCE)
	}
	return config, nil
}

// ApplyEnv overrides the configuration with the environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if level, ok := lookup(LOG_LEVEL_ENV_VAR); ok {
		c.LogLevel = level
	}

	isSet := func(name string) bool {
		s, ok := lookup(name)
		return ok && len(s) != 0 && s != "false" && s != "0"
	}

	forceColor := isSet("FORCE_COLOR")
	noColor := isSet("NO_COLOR")

	colorterm, _ := lookup("COLORTERM")
	term, _ := lookup("TERM")
	trueColor := colorterm == "truecolor"
	term256 := strings.Contains(term, "256color")

	c.Colorize = !noColor && (forceColor || trueColor || term256)
}

// Profile returns the termenv color profile matching the configuration.
func (c Config) Profile() termenv.Profile {
	if c.Colorize {
		return termenv.ANSI
	}
	return termenv.Ascii
}
