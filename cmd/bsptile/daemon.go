package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/bsptile/internal/daemon"
)

func newDaemonCmd(g *globals) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the tiling daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := daemon.Options{
				ConfigPath: configPath,
				SocketPath: g.socket,
			}
			// Without --verbose the configured log_level applies.
			if g.verbose {
				opts.Logger = g.logger
			}
			return daemon.New(opts).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: ~/.config/bsptile/config.yaml)")
	return cmd
}
