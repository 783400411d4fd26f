package main

import (
	"github.com/spf13/cobra"

	"aiproxy/internal/platform/config"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "gateway",
		Short: "SSO gateway for the AI proxy CLI",
		Long: `gateway authenticates CLI users through the enterprise identity
provider and serves the model catalog, managed settings and CLI builds to
holders of a valid access token.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")

	load := func() (config.Config, error) {
		return config.Load(configPath)
	}
	root.AddCommand(newServeCmd(load), newTokenCmd(load))
	return root
}
