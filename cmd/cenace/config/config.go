// Package configcmder provides the config command for managing persistent
// cenace configuration stored in the .cenace/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent cenace configuration.

Configuration is stored as config.toml in the .cenace/ directory and provides
default values for command flags. CLI flags and CENACE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.api_endpoint, client.timeout,
  chat.k, chat.filter, chat.like_policy,
  render.style, render.width, render.cache_size,
  events.provider, events.brokers, events.topic,
  mock.listen, mock.framing

Use subcommands to get, set, or list configuration values:
  cenace config set <key> <value>    Set a configuration value
  cenace config get <key>            Get a configuration value
  cenace config list                 List all configuration values

Examples:
  cenace config set client.api_endpoint http://cenace.local:8000
  cenace config set chat.filter documentos
  cenace config get chat.k
  cenace config list`

const configShortDesc string = "Manage persistent cenace configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
