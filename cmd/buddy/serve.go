package main

import (
	"github.com/spf13/cobra"

	"github.com/xhad/buddy/server"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return server.New(p, a.presenter(), a.logger).ListenAndServe(ctx, addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return serve
}
