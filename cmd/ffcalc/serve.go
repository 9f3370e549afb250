package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nihei9/ffcalc/server"
	"github.com/spf13/cobra"
)

var serveFlags = struct {
	addr          *string
	maxConcurrent *int
	maxBodyBytes  *int64
	waitTimeout   *time.Duration
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the calculation over HTTP",
		Example: `  ffcalc serve --addr :8080`,
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}
	serveFlags.addr = cmd.Flags().String("addr", ":8080", "address to listen on")
	serveFlags.maxConcurrent = cmd.Flags().Int("max-concurrent", server.DefaultMaxConcurrent, "number of analyses running at once")
	serveFlags.maxBodyBytes = cmd.Flags().Int64("max-body-bytes", server.DefaultMaxBodyBytes, "maximum size of a request body")
	serveFlags.waitTimeout = cmd.Flags().Duration("wait-timeout", server.DefaultWaitTimeout, "how long a request waits for a free worker")
	rootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(server.Config{
		MaxConcurrent: *serveFlags.maxConcurrent,
		MaxBodyBytes:  *serveFlags.maxBodyBytes,
		WaitTimeout:   *serveFlags.waitTimeout,
	})
	return s.ListenAndServe(ctx, *serveFlags.addr)
}
