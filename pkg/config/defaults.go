package config

const (
	defaultAPIEndpoint   = "http://localhost:8000"
	defaultClientTimeout = "5m"

	defaultK          = 10
	defaultFilter     = "None"
	defaultLikePolicy = "accept"

	defaultRenderStyle     = "auto"
	defaultRenderWidth     = 100
	defaultRenderCacheSize = 256

	defaultEventsProvider = "none"
	defaultEventsBrokers  = "localhost:9092"
	defaultEventsTopic    = "cenace.events"

	defaultMockListen  = ":8000"
	defaultMockFraming = "wrapped"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			APIEndpoint: defaultAPIEndpoint,
			Timeout:     defaultClientTimeout,
		},
		Chat: ChatConfig{
			K:          defaultK,
			Filter:     defaultFilter,
			LikePolicy: defaultLikePolicy,
		},
		Render: RenderConfig{
			Style:     defaultRenderStyle,
			Width:     defaultRenderWidth,
			CacheSize: defaultRenderCacheSize,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Brokers:  defaultEventsBrokers,
			Topic:    defaultEventsTopic,
		},
		Mock: MockConfig{
			Listen:  defaultMockListen,
			Framing: defaultMockFraming,
		},
	}
}
