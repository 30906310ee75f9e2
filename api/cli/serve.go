package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	bootstrap "github.com/peshal-hash/activepieces/api/bootstrap"
	"github.com/peshal-hash/activepieces/api/config"
	"github.com/peshal-hash/activepieces/api/router"
	"github.com/peshal-hash/activepieces/api/server"
)

func newServeCmd() *cobra.Command {
	var httpPort, grpcPort string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the gRPC health server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// router.NewRouter bootstraps; a failed bootstrap still serves health checks.
			handler := router.NewRouter()
			initErr := bootstrap.Ensure()

			if httpPort == "" && config.AppConfig != nil {
				httpPort = config.AppConfig.HTTPPort
			}
			if grpcPort == "" && config.AppConfig != nil {
				grpcPort = config.AppConfig.GRPCPort
			}
			if httpPort == "" {
				httpPort = "8080"
			}
			if grpcPort == "" {
				grpcPort = "50051"
			}

			srv := server.New(httpPort, grpcPort, handler, bootstrap.GetLogger())
			srv.SetServing(initErr == nil)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&httpPort, "http-port", "", "HTTP port (defaults to PORT)")
	cmd.Flags().StringVar(&grpcPort, "grpc-port", "", "gRPC health port (defaults to GRPC_PORT)")
	return cmd
}
