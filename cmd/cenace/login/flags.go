package logincmder

import (
	"github.com/spf13/cobra"

	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

func addClientFlags(cmd *cobra.Command, endpoint, timeout *string) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, timeout)
}
