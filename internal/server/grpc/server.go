package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/metakeeper/internal/api"
	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/handlers"
	"google.golang.org/grpc"
)

// Categories resolves a category name to its handler.
type Categories interface {
	Get(category string) (handlers.CategoryHandler, error)
	Categories() []string
}

type GRPCServer struct {
	api.UnimplementedMetadataServiceServer
	address    string
	categories Categories
	logger     logging.Logger
	jwtSecret  []byte
}

func NewGRPCServer(address string, l logging.Logger, categories Categories, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:    address,
		logger:     l.With("module", "grpc_server"),
		categories: categories,
		jwtSecret:  []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterMetadataServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping gRPC server")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
