/*
Package config manages wordfix configuration.

Files are TOML by default. Paths ending in .yaml or .yml are read and
written as YAML. After a file is loaded, variables from a .env file and
the process environment override individual settings.
*/
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/bastiangx/wordfix/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Vocab   VocabConfig   `toml:"vocab" yaml:"vocab"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Report  ReportConfig  `toml:"report" yaml:"report"`
	Redis   RedisConfig   `toml:"redis" yaml:"redis"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// EngineConfig has correction options.
type EngineConfig struct {
	Threshold float64 `toml:"threshold" yaml:"threshold"`
	// Workers bounds parallel batch correction, 0 means GOMAXPROCS.
	Workers int `toml:"workers" yaml:"workers"`
}

// VocabConfig locates the vocabulary.
type VocabConfig struct {
	Path string `toml:"path" yaml:"path"`
	// RedisKey names a Redis set of extra words. Empty disables it.
	RedisKey string `toml:"redis_key" yaml:"redis_key"`
}

// ServerConfig has IPC limits.
type ServerConfig struct {
	MaxBatch      int `toml:"max_batch" yaml:"max_batch"`
	MaxWordLength int `toml:"max_word_length" yaml:"max_word_length"`
	MaxCandidates int `toml:"max_candidates" yaml:"max_candidates"`
}

// ReportConfig selects where reports are kept.
type ReportConfig struct {
	Backend     string `toml:"backend" yaml:"backend"`
	Dir         string `toml:"dir" yaml:"dir"`
	BadgerPath  string `toml:"badger_path" yaml:"badger_path"`
	RedisPrefix string `toml:"redis_prefix" yaml:"redis_prefix"`
}

// RedisConfig is shared by the vocabulary source and the report store.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// MetricsConfig controls the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.toml"

var reportBackends = map[string]bool{"none": true, "dir": true, "badger": true, "redis": true}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Threshold: 75,
			Workers:   0,
		},
		Vocab: VocabConfig{
			Path: "words.txt",
		},
		Server: ServerConfig{
			MaxBatch:      10000,
			MaxWordLength: 256,
			MaxCandidates: 64,
		},
		Report: ReportConfig{
			Backend:     "dir",
			Dir:         "reports",
			BadgerPath:  "reports.db",
			RedisPrefix: "wordfix",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// Validate checks values that would make the engine or server unusable.
func (c *Config) Validate() error {
	var errs []error
	if t := c.Engine.Threshold; math.IsNaN(t) || t < 0 || t > 100 {
		errs = append(errs, fmt.Errorf("engine.threshold %v out of range [0,100]", t))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("engine.workers must be >= 0, got %d", c.Engine.Workers))
	}
	if c.Server.MaxBatch < 1 {
		errs = append(errs, fmt.Errorf("server.max_batch must be positive, got %d", c.Server.MaxBatch))
	}
	if c.Server.MaxWordLength < 1 {
		errs = append(errs, fmt.Errorf("server.max_word_length must be positive, got %d", c.Server.MaxWordLength))
	}
	if c.Server.MaxCandidates < 1 {
		errs = append(errs, fmt.Errorf("server.max_candidates must be positive, got %d", c.Server.MaxCandidates))
	}
	if !reportBackends[c.Report.Backend] {
		errs = append(errs, fmt.Errorf("report.backend %q unknown (want none, dir, badger or redis)", c.Report.Backend))
	}
	return errors.Join(errs...)
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Vocab.RedisKey != "" || c.Report.Backend == "redis"
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(ConfigFileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [UserConfigDir]/wordfix/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied to whichever config was chosen.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	LoadDotEnv()
	config.ApplyEnv(os.LookupEnv)
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML or YAML file. Keys missing from the file
// keep their defaults. When the file does not decode into Config, the
// sections that still parse are used.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadConfigFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		if val, ok := utils.ExtractFloat(section, "threshold"); ok {
			config.Engine.Threshold = val
		}
		if val, ok := utils.ExtractInt(section, "workers"); ok {
			config.Engine.Workers = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "vocab"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Vocab.Path = val
		}
		if val, ok := utils.ExtractString(section, "redis_key"); ok {
			config.Vocab.RedisKey = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractInt(section, "max_batch"); ok {
			config.Server.MaxBatch = val
		}
		if val, ok := utils.ExtractInt(section, "max_word_length"); ok {
			config.Server.MaxWordLength = val
		}
		if val, ok := utils.ExtractInt(section, "max_candidates"); ok {
			config.Server.MaxCandidates = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "report"); ok {
		if val, ok := utils.ExtractString(section, "backend"); ok {
			config.Report.Backend = val
		}
		if val, ok := utils.ExtractString(section, "dir"); ok {
			config.Report.Dir = val
		}
		if val, ok := utils.ExtractString(section, "badger_path"); ok {
			config.Report.BadgerPath = val
		}
		if val, ok := utils.ExtractString(section, "redis_prefix"); ok {
			config.Report.RedisPrefix = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "redis"); ok {
		if val, ok := utils.ExtractString(section, "addr"); ok {
			config.Redis.Addr = val
		}
		if val, ok := utils.ExtractString(section, "password"); ok {
			config.Redis.Password = val
		}
		if val, ok := utils.ExtractInt(section, "db"); ok {
			config.Redis.DB = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "metrics"); ok {
		if val, ok := utils.ExtractString(section, "addr"); ok {
			config.Metrics.Addr = val
		}
	}
	return config, nil
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// is given. Variables already set in the environment win. A missing file is
// not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if !utils.FileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warnf("Failed to load %s: %v", p, err)
		}
	}
}

// ApplyEnv overrides settings from environment variables looked up with
// lookup. Unparsable numbers are logged and ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("WORDFIX_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Engine.Threshold = f
		} else {
			log.Warnf("Ignoring WORDFIX_THRESHOLD=%q: %v", v, err)
		}
	}
	if v, ok := lookup("WORDFIX_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.Workers = n
		} else {
			log.Warnf("Ignoring WORDFIX_WORKERS=%q: %v", v, err)
		}
	}
	if v, ok := lookup("WORDFIX_VOCAB"); ok && v != "" {
		c.Vocab.Path = v
	}
	if v, ok := lookup("WORDFIX_REPORT_BACKEND"); ok && v != "" {
		c.Report.Backend = v
	}
	if v, ok := lookup("WORDFIX_REPORT_DIR"); ok && v != "" {
		c.Report.Dir = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := lookup("REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		} else {
			log.Warnf("Ignoring REDIS_DB=%q: %v", v, err)
		}
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML or YAML file, by extension
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveConfigFile(config, configPath)
}
