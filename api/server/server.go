package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/peshal-hash/activepieces/api/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// BillingServiceName is the name health checks ask about.
const BillingServiceName = "billing"

// Server runs the HTTP router and a gRPC health endpoint side by side.
type Server struct {
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	log    *logger.Logger

	httpAddr string
	grpcAddr string
}

// New builds a server listening on the given ports (":" is prefixed when missing).
func New(httpPort, grpcPort string, handler http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	hs := health.NewServer()
	hs.SetServingStatus(BillingServiceName, healthpb.HealthCheckResponse_SERVING)
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	s := &Server{
		grpc:     gs,
		health:   hs,
		log:      log,
		httpAddr: addr(httpPort),
		grpcAddr: addr(grpcPort),
	}
	s.http = &http.Server{
		Addr:              s.httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Run serves until ctx is cancelled or a listener fails, then shuts both
// servers down gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.grpcAddr)
	}
	return s.serve(ctx, lis)
}

func (s *Server) serve(ctx context.Context, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Infow("gRPC health server listening", "addr", grpcLis.Addr().String())
		return s.grpc.Serve(grpcLis)
	})
	g.Go(func() error {
		s.log.Infow("HTTP server listening", "addr", s.httpAddr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Infow("shutting down servers gracefully")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.http.Shutdown(shutdownCtx)
		s.grpc.GracefulStop()
		return err
	})

	return g.Wait()
}

// SetServing flips the billing health status, e.g. while bootstrap is failing.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(BillingServiceName, status)
}

func addr(port string) string {
	if port == "" || port[0] == ':' {
		return port
	}
	if _, _, err := net.SplitHostPort(port); err == nil {
		return port
	}
	return ":" + port
}
