package grpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"ai-video-summary-service/internal/observability/metrics"
)

func startServer(t *testing.T) (*Server, grpc_health_v1.HealthClient, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	s := New(m)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		if err := <-done; err != nil {
			t.Errorf("Serve() returned error: %v", err)
		}
	})
	return s, grpc_health_v1.NewHealthClient(conn), m
}

func check(t *testing.T, client grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q) error: %v", service, err)
	}
	return resp.GetStatus()
}

func TestServer_HealthFollowsSetServing(t *testing.T) {
	s, client, _ := startServer(t)

	for _, svc := range []string{"", ServiceName} {
		if got := check(t, client, svc); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
			t.Errorf("service %q before SetServing: got %v, want NOT_SERVING", svc, got)
		}
	}

	s.SetServing(true)
	for _, svc := range []string{"", ServiceName} {
		if got := check(t, client, svc); got != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("service %q after SetServing(true): got %v, want SERVING", svc, got)
		}
	}

	s.SetServing(false)
	if got := check(t, client, ""); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("after SetServing(false): got %v, want NOT_SERVING", got)
	}
}

func TestServer_InterceptorRecordsCalls(t *testing.T) {
	s, client, m := startServer(t)
	s.SetServing(true)

	check(t, client, "")
	check(t, client, ServiceName)

	got := testutil.ToFloat64(m.GRPCRequests.WithLabelValues("/grpc.health.v1.Health/Check", "OK"))
	if got != 2 {
		t.Errorf("expected 2 recorded health checks, got %v", got)
	}
}
