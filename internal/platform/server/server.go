package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

// Server は HTTP API サーバーとヘルスチェック用 gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr       string
	healthListenAddr string
	httpServer       *http.Server
	grpcServer       *grpc.Server
	health           *health.Server
}

// New は指定されたアドレスで待ち受けるサーバーを構築します。healthListenAddr が空の場合 gRPC ヘルスチェックは起動しません。
func New(listenAddr, healthListenAddr string, handler http.Handler, opts ...grpc.ServerOption) *Server {
	srv := grpc.NewServer(opts...)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)

	return &Server{
		listenAddr:       listenAddr,
		healthListenAddr: healthListenAddr,
		httpServer: &http.Server{
			Addr:              listenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: srv,
		health:     healthSrv,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると停止します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}

	errCh := make(chan error, 2)

	if s.healthListenAddr != "" {
		healthLis, err := net.Listen("tcp", s.healthListenAddr)
		if err != nil {
			_ = lis.Close()
			return fmt.Errorf("listen on %s: %w", s.healthListenAddr, err)
		}
		go func() {
			if err := s.grpcServer.Serve(healthLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("serve gRPC health: %w", err)
			}
		}()
	}

	go func() {
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP: %w", err)
		}
	}()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	select {
	case <-ctx.Done():
		return s.GracefulStop()
	case err := <-errCh:
		_ = s.GracefulStop()
		return err
	}
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() error {
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)

	s.grpcServer.GracefulStop()
	if err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}
	return nil
}
