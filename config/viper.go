package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"github.com/vyomadl/vyoma-dl/pkg/consts"
)

type Config struct {
	Username    string `toml:"username" mapstructure:"username" json:"username"`
	Password    string `toml:"password" mapstructure:"password" json:"-"`
	DownloadDir string `toml:"download_dir" mapstructure:"download_dir" json:"download_dir"`
	Progress    bool   `toml:"progress" mapstructure:"progress" json:"progress"`

	Site siteConfig `toml:"site" mapstructure:"site" json:"site"`
	HTTP httpConfig `toml:"http" mapstructure:"http" json:"http"`
	Log  logConfig  `toml:"log" mapstructure:"log" json:"log"`
	DB   dbConfig   `toml:"db" mapstructure:"db" json:"db"`
}

type siteConfig struct {
	BaseURL string `toml:"base_url" mapstructure:"base_url" json:"base_url"`
}

type httpConfig struct {
	// Timeout in seconds for a whole request, 0 disables it.
	Timeout   int     `toml:"timeout" mapstructure:"timeout" json:"timeout"`
	Proxy     string  `toml:"proxy" mapstructure:"proxy" json:"proxy"`
	RateLimit float64 `toml:"rate_limit" mapstructure:"rate_limit" json:"rate_limit"`
	UserAgent string  `toml:"user_agent" mapstructure:"user_agent" json:"user_agent"`
}

type logConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	File  string `toml:"file" mapstructure:"file"`
}

type dbConfig struct {
	// Path of the run history database; empty disables history.
	Path string `toml:"path" mapstructure:"path"`
}

func (h httpConfig) TimeoutDuration() time.Duration {
	return time.Duration(h.Timeout) * time.Second
}

var cfg = &Config{}

func C() *Config {
	return cfg
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// DataDir is where the config file and history database live by default.
func DataDir() string {
	return filepath.Join(homeDir(), ".vyoma")
}

// Init loads configuration from configFile, or from config.toml in the
// working directory or DataDir when configFile is empty. A missing default
// config file is not an error.
func Init(ctx context.Context, configFile string) error {
	logger := log.FromContext(ctx)
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath(DataDir())
		viper.SetConfigType("toml")
	}
	viper.SetEnvPrefix("VYOMA")
	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.BindEnv("username", "VYOMA_USERNAME", "VYOMA_USER")
	viper.BindEnv("password", "VYOMA_PASSWORD", "VYOMA_PASS")

	viper.SetDefault("progress", true)
	viper.SetDefault("site.base_url", consts.DefaultSiteURL)
	viper.SetDefault("http.timeout", 0)
	viper.SetDefault("http.rate_limit", 0)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("db.path", filepath.Join(DataDir(), "history.db"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		logger.Debug("No config file found, using defaults and environment")
	} else {
		logger.Debug("Loaded config", "file", viper.ConfigFileUsed())
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := loaded.validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func (c *Config) validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %d", c.HTTP.Timeout)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative, got %v", c.HTTP.RateLimit)
	}
	if c.Site.BaseURL == "" {
		return errors.New("site.base_url must not be empty")
	}
	return nil
}

// DownloadRoot returns the directory courses are stored under, defaulting
// to ~/vyoma/<username>.
func (c *Config) DownloadRoot(username string) string {
	if c.DownloadDir != "" {
		return expandHome(c.DownloadDir)
	}
	return filepath.Join(homeDir(), "vyoma", username)
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func Set(key string, value any) {
	viper.Set(key, value)
}
