package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --api-endpoint
// on "cenace chat", "cenace tui" and "cenace mcp").
type Flag struct {
	// Name is the long flag name (e.g. "api-endpoint").
	Name string

	// Shorthand is the one-letter short flag (e.g. "a"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.api_endpoint").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPIEndpoint    = "api-endpoint"
	FlagTimeout        = "timeout"
	FlagK              = "k"
	FlagFilter         = "filter"
	FlagLikePolicy     = "like-policy"
	FlagRenderStyle    = "style"
	FlagRenderWidth    = "width"
	FlagEventsProvider = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagEventsTopic    = "events-topic"
	FlagMockListen     = "listen"
	FlagMockFraming    = "framing"
)

// ClientFlags are the flags shared by every command that talks to the backend.
var ClientFlags = FlagSet{
	FlagAPIEndpoint: {Name: "api-endpoint", Shorthand: "a", ViperKey: "client.api_endpoint", Description: "CENACE backend URL"},
	FlagTimeout:     {Name: "timeout", ViperKey: "client.timeout", Description: "Timeout for non-streaming requests"},
}

// ChatFlags are the retrieval and rendering flags of the chat surfaces.
var ChatFlags = FlagSet{
	FlagK:              {Name: "k", Shorthand: "k", ViperKey: "chat.k", Description: "Number of retrieved passages per query"},
	FlagFilter:         {Name: "filter", Shorthand: "f", ViperKey: "chat.filter", Description: "Collection filter (documentos, tickets, soluciones or None)"},
	FlagLikePolicy:     {Name: "like-policy", ViperKey: "chat.like_policy", Description: "What to do when persisting a like fails (accept or rollback)"},
	FlagRenderStyle:    {Name: "style", ViperKey: "render.style", Description: "Markdown style for answers (auto, dark, light, notty)"},
	FlagRenderWidth:    {Name: "width", ViperKey: "render.width", Description: "Word wrap width for rendered answers"},
	FlagEventsProvider: {Name: "events-provider", ViperKey: "events.provider", Description: "Event stream provider (none or kafka)"},
	FlagEventsBrokers:  {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated event stream brokers"},
	FlagEventsTopic:    {Name: "events-topic", ViperKey: "events.topic", Description: "Event stream topic"},
}

// MockFlags are the flags of "cenace mock-backend".
var MockFlags = FlagSet{
	FlagMockListen:  {Name: "listen", Shorthand: "l", ViperKey: "mock.listen", Description: "Address for the mock backend to listen on"},
	FlagMockFraming: {Name: "framing", ViperKey: "mock.framing", Description: "Control payload framing (wrapped or standalone)"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
