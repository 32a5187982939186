package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orbitaledge/internal/clients"
	"orbitaledge/internal/proxy"
)

func newProxyCmd(a *app) *cobra.Command {
	var port, backend string

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Start the same-origin relay in front of the API",
		Example: `  # Relay :3000 to the API at BACKEND_URL
  orbital proxy

  orbital proxy --port 3001 --backend http://api:4000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := a.cfg, a.log
			if port != "" {
				cfg.Proxy.Port = port
			}
			if backend != "" {
				cfg.Proxy.BackendURL = backend
			}

			if !cfg.App.Debug {
				gin.SetMode(gin.ReleaseMode)
			}

			client := clients.NewBackendClient(cfg.Proxy.BackendURL, cfg.Proxy.Timeout)
			router := proxy.NewRouter(proxy.NewHandler(client, log), log)

			server := &http.Server{
				Addr:         ":" + cfg.Proxy.Port,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: cfg.Proxy.Timeout + 5*time.Second,
				IdleTimeout:  60 * time.Second,
			}

			log.Info("proxy starting", zap.String("backend", cfg.Proxy.BackendURL))
			return listenAndShutdown(cmd.Context(), server, cfg.App.ShutdownTimeout, log)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PROXY_PORT)")
	cmd.Flags().StringVar(&backend, "backend", "", "API base URL (overrides BACKEND_URL)")

	return cmd
}
