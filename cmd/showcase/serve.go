package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/showcase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := showcase.LoadConfig()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		app := showcase.New(cfg, showcase.ViewFuncs{})
		defer app.Close()
		return app.Start()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides ADDR)")
}
