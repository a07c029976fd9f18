package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds everything the guestbook needs at startup. None of it
// changes at runtime.
type Config struct {
	APIBaseURL  string        `mapstructure:"api_base_url"`
	Port        int           `mapstructure:"port"`
	Debug       bool          `mapstructure:"debug"`
	Title       string        `mapstructure:"title"`
	Version     string        `mapstructure:"version"`
	Environment string        `mapstructure:"environment"`
	Locale      string        `mapstructure:"locale"`
	Markdown    bool          `mapstructure:"markdown"`
	MCP         bool          `mapstructure:"mcp"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:8080/api")
	v.SetDefault("port", 3000)
	v.SetDefault("debug", false)
	v.SetDefault("title", "Guestbook")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("environment", "development")
	v.SetDefault("locale", "en-US")
	v.SetDefault("markdown", false)
	v.SetDefault("mcp", true)
	v.SetDefault("session_ttl", 30*time.Minute)
}

// Parse reads the configuration. If file is empty, a file named guestbook
// is looked up in the working directory and may be absent. Environment
// variables prefixed with GUESTBOOK_ take precedence over the file.
func Parse(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("guestbook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("guestbook")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("config: api_base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("config: api_base_url should be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port should be between 0 and 65535")
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: locale %q: %w", c.Locale, err)
	}

	if c.SessionTTL <= 0 {
		return errors.New("config: session_ttl should be positive")
	}

	return nil
}
