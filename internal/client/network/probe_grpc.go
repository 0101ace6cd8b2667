package network

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// GRPCHealthProbe asks a grpc.health.v1 endpoint whether the backend serves.
type GRPCHealthProbe struct {
	conn       *grpc.ClientConn
	client     healthpb.HealthClient
	service    string
	interfaces InterfaceLister
}

// NewGRPCHealthProbe creates a lazy client for addr. Without options the
// connection is plaintext.
func NewGRPCHealthProbe(addr, service string, opts ...grpc.DialOption) (*GRPCHealthProbe, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc health client: %w", err)
	}
	return &GRPCHealthProbe{
		conn:       conn,
		client:     healthpb.NewHealthClient(conn),
		service:    service,
		interfaces: net.Interfaces,
	}, nil
}

func (p *GRPCHealthProbe) IsConnected(ctx context.Context) (bool, error) {
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		switch status.Code(err) {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return false, nil
		}
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (p *GRPCHealthProbe) IsWifiConnected(context.Context) (bool, error) {
	return hasWirelessLink(p.interfaces)
}

func (p *GRPCHealthProbe) Close() error {
	return p.conn.Close()
}
