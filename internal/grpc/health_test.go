package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type phaseStub struct {
	mu        sync.Mutex
	phase     types.Phase
	listeners []session.Listener
}

func (p *phaseStub) Phase() types.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

func (p *phaseStub) Subscribe(l session.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

func (p *phaseStub) move(phase types.Phase) {
	p.mu.Lock()
	p.phase = phase
	listeners := append([]session.Listener(nil), p.listeners...)
	p.mu.Unlock()
	for _, l := range listeners {
		l(types.PhaseSnapshot{Phase: phase})
	}
}

func startServer(t *testing.T, source PhaseSource) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewHealthServer(nil, nil)
	srv.Track(source)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		phase types.Phase
		want  healthpb.HealthCheckResponse_ServingStatus
	}{
		{types.PhaseBooting, healthpb.HealthCheckResponse_SERVING},
		{types.PhaseRunning, healthpb.HealthCheckResponse_SERVING},
		{types.PhaseShutdownPending, healthpb.HealthCheckResponse_NOT_SERVING},
		{types.PhaseShutdownFinal, healthpb.HealthCheckResponse_NOT_SERVING},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.phase))
		})
	}
}

func TestHealthFollowsPhase(t *testing.T) {
	source := &phaseStub{phase: types.PhaseBooting}
	client := startServer(t, source)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))

	source.move(types.PhaseRunning)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))

	source.move(types.PhaseShutdownPending)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}
