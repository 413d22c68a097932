package api

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/test/bufconn"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_TakenAtRoundTripToTheSecond(t *testing.T) {
	takenAt := time.Date(2026, 3, 1, 8, 30, 15, 0, time.UTC)
	in := &LogEntry{MedicationID: "m1", MedicationName: "Aspirin", TakenAt: Timestamp(takenAt), Status: "taken"}

	c := encoding.GetCodec(CodecName)
	data, err := c.Marshal(in)
	require.NoError(t, err)

	var out LogEntry
	require.NoError(t, c.Unmarshal(data, &out))
	got := Time(out.TakenAt)
	assert.True(t, got.Equal(takenAt), "got %v", got)
	assert.Equal(t, time.Local, got.Location())
}

func TestTimeConversions(t *testing.T) {
	assert.Nil(t, Timestamp(time.Time{}))
	assert.Nil(t, OptionalTimestamp(nil))
	assert.True(t, Time(nil).IsZero())
	assert.Nil(t, OptionalTime(nil))

	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	got := OptionalTime(OptionalTimestamp(&end))
	require.NotNil(t, got)
	assert.True(t, got.Equal(end))
}

func TestFullMethodAndPublic(t *testing.T) {
	assert.Equal(t, "/medtrack.v1.MedTrack/Ping", FullMethod(MethodPing))
	assert.True(t, PublicMethods[FullMethod(MethodSignIn)])
	assert.False(t, PublicMethods[FullMethod(MethodAddLog)])
	assert.False(t, PublicMethods[FullMethod(MethodWatchLogs)])
}

type pingLogsServer struct {
	MedTrackServer
}

func (pingLogsServer) Ping(ctx context.Context, _ *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (pingLogsServer) WatchLogs(_ *WatchRequest, stream grpc.ServerStreamingServer[LogsSnapshot]) error {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		snap := &LogsSnapshot{Logs: []*LogEntry{{ID: "l1", TakenAt: Timestamp(at)}}}
		if err := stream.Send(snap); err != nil {
			return err
		}
	}
	return nil
}

func dialBuf(t *testing.T, srv MedTrackServer) MedTrackClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterMedTrackServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewMedTrackClient(conn)
}

func TestServiceDesc_UnaryOverJSON(t *testing.T) {
	c := dialBuf(t, pingLogsServer{})
	resp, err := c.Ping(context.Background(), &PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
}

func TestServiceDesc_ServerStream(t *testing.T) {
	c := dialBuf(t, pingLogsServer{})
	stream, err := c.WatchLogs(context.Background(), &WatchRequest{})
	require.NoError(t, err)

	n := 0
	for {
		snap, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Len(t, snap.Logs, 1)
		assert.Equal(t, "l1", snap.Logs[0].ID)
		n++
	}
	assert.Equal(t, 2, n)
}
