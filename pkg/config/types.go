package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent cenace configuration stored as config.toml
// in the .cenace/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Render  RenderConfig `toml:"render"`
	Events  EventsConfig `toml:"events"`
	Mock    MockConfig   `toml:"mock"`
}

// ClientConfig holds settings for commands that talk to the CENACE backend.
type ClientConfig struct {
	// APIEndpoint is the full backend URL (scheme + host + port).
	APIEndpoint string `toml:"api_endpoint,omitempty"`

	// Timeout bounds non-streaming requests, as a Go duration string.
	Timeout string `toml:"timeout,omitempty"`
}

// ChatConfig holds retrieval parameters sent with every chat request.
type ChatConfig struct {
	K          uint   `toml:"k,omitempty"`
	Filter     string `toml:"filter,omitempty"`
	LikePolicy string `toml:"like_policy,omitempty"`
}

// RenderConfig holds Markdown rendering settings for the terminal surfaces.
type RenderConfig struct {
	Style     string `toml:"style,omitempty"`
	Width     uint   `toml:"width,omitempty"`
	CacheSize uint   `toml:"cache_size,omitempty"`
}

// EventsConfig holds settings for publishing sealed answers and likes.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of broker addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// MockConfig holds settings for the in-process mock backend.
type MockConfig struct {
	Listen  string `toml:"listen,omitempty"`
	Framing string `toml:"framing,omitempty"`
}

// TimeoutDuration parses Client.Timeout, falling back to the default timeout
// when the value is empty or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultClientTimeout)
	}
	return d
}

// BrokerList splits Events.Brokers into trimmed, non-empty addresses.
func (c *Config) BrokerList() []string {
	return SplitList(c.Events.Brokers)
}

// SplitList splits a comma separated value into trimmed, non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func uintValue(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(key, v string) (uint, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return uint(n), nil
}

func oneOf(key, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value for %s: %q (expected one of %s)", key, v, strings.Join(allowed, ", "))
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.api_endpoint": {
		get: func(c *Config) string { return c.Client.APIEndpoint },
		set: func(c *Config, v string) error { c.Client.APIEndpoint = strings.TrimRight(v, "/"); return nil },
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			c.Client.Timeout = v
			return nil
		},
	},
	"chat.k": {
		get: func(c *Config) string { return uintValue(c.Chat.K) },
		set: func(c *Config, v string) error {
			n, err := parseUint("chat.k", v)
			if err != nil {
				return err
			}
			c.Chat.K = n
			return nil
		},
	},
	"chat.filter": {
		get: func(c *Config) string { return c.Chat.Filter },
		set: func(c *Config, v string) error { c.Chat.Filter = v; return nil },
	},
	"chat.like_policy": {
		get: func(c *Config) string { return c.Chat.LikePolicy },
		set: func(c *Config, v string) error {
			if err := oneOf("chat.like_policy", v, "accept", "rollback"); err != nil {
				return err
			}
			c.Chat.LikePolicy = v
			return nil
		},
	},
	"render.style": {
		get: func(c *Config) string { return c.Render.Style },
		set: func(c *Config, v string) error { c.Render.Style = v; return nil },
	},
	"render.width": {
		get: func(c *Config) string { return uintValue(c.Render.Width) },
		set: func(c *Config, v string) error {
			n, err := parseUint("render.width", v)
			if err != nil {
				return err
			}
			c.Render.Width = n
			return nil
		},
	},
	"render.cache_size": {
		get: func(c *Config) string { return uintValue(c.Render.CacheSize) },
		set: func(c *Config, v string) error {
			n, err := parseUint("render.cache_size", v)
			if err != nil {
				return err
			}
			c.Render.CacheSize = n
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if err := oneOf("events.provider", v, "none", "kafka"); err != nil {
				return err
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"mock.listen": {
		get: func(c *Config) string { return c.Mock.Listen },
		set: func(c *Config, v string) error { c.Mock.Listen = v; return nil },
	},
	"mock.framing": {
		get: func(c *Config) string { return c.Mock.Framing },
		set: func(c *Config, v string) error {
			if err := oneOf("mock.framing", v, "wrapped", "standalone"); err != nil {
				return err
			}
			c.Mock.Framing = v
			return nil
		},
	},
}
