package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postbot/internal/config"
)

func newCheckConfigCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and print the effective listen address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfigManager(cfgPath).Parse()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: listen=%s storage=%s timezone=%s auto_init=%t\n",
				cfg.HTTP.ListenAddr(), cfg.Storage.Driver, cfg.Scheduler.Timezone, cfg.Telegram.AutoInit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file (json or yaml)")
	return cmd
}
