// Package config loads the environment configuration of spec §6 using
// viper, the way the teacher's internal/config package loads its own
// Config struct from environment variables and an optional file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the environment configuration recognized by swagconfd.
type Config struct {
	ConfigDir  string `mapstructure:"config_dir"`
	TemplateDir string `mapstructure:"template_dir"`
	LogDir     string `mapstructure:"log_dir"`

	DefaultAuthMethod   string `mapstructure:"default_auth_method"`
	DefaultConfigBase   string `mapstructure:"default_config_base"`
	DefaultQUICEnabled  bool   `mapstructure:"default_quic_enabled"`
	BackupRetentionDays int    `mapstructure:"backup_retention_days"`
	HealthTimeoutDefaultS int  `mapstructure:"health_timeout_default_s"`
	MaxFileBytes        int64  `mapstructure:"max_file_bytes"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig mirrors pkg/logger.Config, split out so viper can populate it
// from LOG_* environment variables independently of the core paths above.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ExitCode classifies process-level failures per spec §6.
type ExitCode int

const (
	ExitOK                ExitCode = 0
	ExitUnhandledFailure  ExitCode = 1
	ExitInvalidConfig     ExitCode = 2
	ExitMissingTemplates  ExitCode = 3
)

var required = []string{"config_dir", "template_dir", "log_dir"}

// Load reads CONFIG_DIR / TEMPLATE_DIR / LOG_DIR and the optional keys of
// spec §6 from the environment, applying the documented defaults the same
// way internal/config.LoadConfigFromEnv does with viper.SetDefault.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bind(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal environment config: %w", err)
	}

	for _, key := range required {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("%w: missing required environment key for %s", ErrInvalidConfig, key)
		}
	}

	return &cfg, nil
}

func bind(v *viper.Viper) {
	keys := []string{
		"config_dir", "template_dir", "log_dir",
		"default_auth_method", "default_config_base", "default_quic_enabled",
		"backup_retention_days", "health_timeout_default_s", "max_file_bytes",
		"log.level", "log.format", "log.output", "log.filename",
		"log.max_size_mb", "log.max_backups", "log.max_age_days", "log.compress",
	}
	envs := map[string]string{
		"config_dir":               "CONFIG_DIR",
		"template_dir":             "TEMPLATE_DIR",
		"log_dir":                  "LOG_DIR",
		"default_auth_method":      "DEFAULT_AUTH_METHOD",
		"default_config_base":      "DEFAULT_CONFIG_BASE",
		"default_quic_enabled":     "DEFAULT_QUIC_ENABLED",
		"backup_retention_days":    "BACKUP_RETENTION_DAYS",
		"health_timeout_default_s": "HEALTH_TIMEOUT_DEFAULT_S",
		"max_file_bytes":           "MAX_FILE_BYTES",
		"log.level":                "LOG_LEVEL",
		"log.format":               "LOG_FORMAT",
		"log.output":               "LOG_OUTPUT",
		"log.filename":             "LOG_FILE",
		"log.max_size_mb":          "LOG_MAX_SIZE_MB",
		"log.max_backups":          "LOG_MAX_BACKUPS",
		"log.max_age_days":         "LOG_MAX_AGE_DAYS",
		"log.compress":             "LOG_COMPRESS",
	}
	for _, k := range keys {
		_ = v.BindEnv(k, envs[k])
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_auth_method", "authelia")
	v.SetDefault("default_config_base", "subdomain")
	v.SetDefault("default_quic_enabled", false)
	v.SetDefault("backup_retention_days", 30)
	v.SetDefault("health_timeout_default_s", 30)
	v.SetDefault("max_file_bytes", 2097152)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
}
