// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"blockfix/internal/api"
	"blockfix/internal/logger"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the patch API over HTTP",
	Long: `Starts an HTTP server exposing the patch catalogue and check/apply
endpoints under /api. The catalogue and SSH hosts are read once at startup.

The API can rewrite any file this user can write, locally and on configured
SSH hosts. It listens on loopback by default and only accepts JSON POST
bodies; bind it elsewhere with --addr only on a trusted network.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, cfg, err := loadCatalogue()
		if err != nil {
			return err
		}

		s := &api.Server{Catalogue: cat, Hosts: cfg.EnabledHosts(), Remote: sshManager}
		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           s.NewRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx := cmd.Context()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		statusColor.Fprintf(cmd.OutOrStdout(), "Starting API server on %s\n", serveAddr)
		logger.Info("api server listening", "addr", serveAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
}
