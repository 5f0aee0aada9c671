package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/anmerino-pnd/proyectoCenace/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the CENACE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (CENACE_CLIENT_API_ENDPOINT, CENACE_CHAT_K, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("CENACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper builds a Config from the resolved viper values so commands see
// flags, environment and file through one struct.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Client: ClientConfig{
			APIEndpoint: strings.TrimRight(v.GetString("client.api_endpoint"), "/"),
			Timeout:     v.GetString("client.timeout"),
		},
		Chat: ChatConfig{
			K:          v.GetUint("chat.k"),
			Filter:     v.GetString("chat.filter"),
			LikePolicy: v.GetString("chat.like_policy"),
		},
		Render: RenderConfig{
			Style:     v.GetString("render.style"),
			Width:     v.GetUint("render.width"),
			CacheSize: v.GetUint("render.cache_size"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
		Mock: MockConfig{
			Listen:  v.GetString("mock.listen"),
			Framing: v.GetString("mock.framing"),
		},
	}
	applyDefaults(cfg)
	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Client
	v.SetDefault("client.api_endpoint", d.Client.APIEndpoint)
	v.SetDefault("client.timeout", d.Client.Timeout)

	// Chat
	v.SetDefault("chat.k", d.Chat.K)
	v.SetDefault("chat.filter", d.Chat.Filter)
	v.SetDefault("chat.like_policy", d.Chat.LikePolicy)

	// Render
	v.SetDefault("render.style", d.Render.Style)
	v.SetDefault("render.width", d.Render.Width)
	v.SetDefault("render.cache_size", d.Render.CacheSize)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Mock backend
	v.SetDefault("mock.listen", d.Mock.Listen)
	v.SetDefault("mock.framing", d.Mock.Framing)
}
