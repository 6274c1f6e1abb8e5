// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/script-engine/internal/archive"
	"github.com/pdiddy/script-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve exposes topics, research, scripts, source extraction and reading
time as JSON endpoints under /v1, plus /healthz. Requests with "save": true
are archived and listed under /v1/runs. There is no authentication: run it
behind the boundary that owns users and sessions.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}
	noArchive, _ := cmd.Flags().GetBool("no-archive")

	e, err := newEngine(cmd)
	if err != nil {
		return err
	}

	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []server.Option{server.WithFrontendURL(cfg.FrontendBaseURL)}
	if !noArchive {
		store, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithArchive(store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(e, log, opts...).Run(ctx, addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr, :8080)")
	serveCmd.Flags().Bool("no-archive", false, "disable the run archive")
	serveCmd.Flags().Bool("trace", false, "print adapter attempts to stderr")

	rootCmd.AddCommand(serveCmd)
}
