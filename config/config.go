// Package config loads client defaults from a YAML file, a .env file and
// the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/adamwoolhether/courier/client"
)

// DefaultEnvPrefix prefixes the environment variables read by [Load].
const DefaultEnvPrefix = "COURIER"

// Settings are the client defaults that can be set from configuration.
type Settings struct {
	BaseURL          string            `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout          time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	UserAgent        string            `mapstructure:"user_agent"`
	Headers          map[string]string `mapstructure:"headers"`
	Throttle         Throttle          `mapstructure:"throttle"`
	MaxContentLength int64             `mapstructure:"max_content_length" validate:"gte=-1"`
	MaxBodyLength    int64             `mapstructure:"max_body_length" validate:"gte=-1"`
	MaxRedirects     int               `mapstructure:"max_redirects"`
}

// Throttle configures rate limiting. Zero values disable it.
type Throttle struct {
	RPS   int `mapstructure:"rps" validate:"gte=0"`
	Burst int `mapstructure:"burst" validate:"gte=0,required_with=RPS"`
}

type loader struct {
	configFile string
	envFile    string
	envPrefix  string
}

// LoaderOption is a functional option for [Load].
type LoaderOption func(*loader)

// WithConfigFile sets the YAML file to read.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile sets a .env file loaded into the environment before reading it.
func WithEnvFile(path string) LoaderOption {
	return func(l *loader) { l.envFile = path }
}

// WithEnvPrefix overrides [DefaultEnvPrefix].
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *loader) { l.envPrefix = prefix }
}

// Load reads Settings from the configured sources. Environment variables
// such as COURIER_BASE_URL or COURIER_THROTTLE_RPS override file values.
func Load(opts ...LoaderOption) (*Settings, error) {
	l := loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&l)
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("user_agent", "")
	v.SetDefault("throttle.rps", 0)
	v.SetDefault("throttle.burst", 0)
	v.SetDefault("max_content_length", -1)
	v.SetDefault("max_body_length", -1)
	v.SetDefault("max_redirects", 0)

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", l.configFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshalling settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the settings against their declared constraints.
func (s *Settings) Validate() error {
	if err := client.Validate(s); err != nil {
		return fmt.Errorf("validating settings: %w", err)
	}

	return nil
}

// Options converts the settings into client options.
func (s *Settings) Options() []client.Option {
	opts := []client.Option{
		client.WithTimeout(s.Timeout),
		client.WithConfig(&client.Config{
			MaxContentLength: s.MaxContentLength,
			MaxBodyLength:    s.MaxBodyLength,
			MaxRedirects:     s.MaxRedirects,
		}),
	}

	if s.BaseURL != "" {
		opts = append(opts, client.WithBaseURL(s.BaseURL))
	}
	if s.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(s.UserAgent))
	}
	for name, value := range s.Headers {
		opts = append(opts, client.WithHeader(name, value))
	}
	if s.Throttle.RPS > 0 {
		opts = append(opts, client.WithThrottle(s.Throttle.RPS, s.Throttle.Burst))
	}

	return opts
}
