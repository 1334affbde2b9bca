package grpc

import (
	"context"

	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/application"
)

type PriorityInternalServer struct {
	grpc_health_v1.UnimplementedHealthServer
	service *application.Service
}

func NewPriorityInternalServer(service *application.Service) *PriorityInternalServer {
	return &PriorityInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc *PriorityInternalServer) {
	grpc_health_v1.RegisterHealthServer(server, svc)
}

func (s *PriorityInternalServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	_ = s.service
	_ = ctx
	_ = req
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (s *PriorityInternalServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	_ = s.service
	_ = req
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING})
}
