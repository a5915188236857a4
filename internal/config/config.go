package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// TTL returns the query-cache time-to-live, defaulting to five minutes.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

type BackupConfig struct {
	Dir           string `mapstructure:"dir"`
	IntervalHours int    `mapstructure:"interval_hours"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

// Interval returns the auto-backup interval, defaulting to 24 hours.
func (c BackupConfig) Interval() time.Duration {
	if c.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.IntervalHours) * time.Hour
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Log      LogConfig      `mapstructure:"log"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working
// directory. A missing config file is tolerated; defaults and environment
// overrides still apply.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		v.SetDefault("database.path", "data/expense.db")
		v.SetDefault("snapshot.path", "data/snapshot.json")
		v.SetDefault("backup.dir", "backups")
		v.SetDefault("log.level", "info")

		// environment overrides, e.g. EXP_DATABASE_PATH=/tmp/x.db
		v.SetEnvPrefix("EXP")
		v.AutomaticEnv()

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("read config: %w", readErr)
				return
			}
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
