package client

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"google.golang.org/grpc"
)

// watch opens a stream and hands every snapshot to deliver until ctx is
// done or the stream fails. An expired access token is refreshed once per
// opening. The return value is ctx.Err() after cancellation.
func watch[S, T any](
	ctx context.Context,
	s *GRPCClient,
	open func(context.Context) (grpc.ServerStreamingClient[S], error),
	convert func(*S) []T,
	deliver func([]T),
) error {
	refreshed := false
	for {
		access, _ := s.tokens()
		stream, err := open(ctx)
		if err != nil {
			return streamError(ctx, err)
		}

		for {
			snap, err := stream.Recv()
			if err == nil {
				refreshed = false
				deliver(convert(snap))
				continue
			}
			if isTokenExpired(err) && !refreshed {
				if rerr := s.refresh(ctx, access); rerr != nil {
					return mapError(rerr)
				}
				refreshed = true
				break
			}
			return streamError(ctx, err)
		}
	}
}

func streamError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, io.EOF) {
		return ErrUnavailable
	}
	return mapError(err)
}

func (s *GRPCClient) WatchMedications(ctx context.Context, deliver func([]models.Medication)) error {
	return watch(ctx, s,
		func(ctx context.Context) (grpc.ServerStreamingClient[api.MedicationsSnapshot], error) {
			return s.client.WatchMedications(ctx, &api.WatchRequest{})
		},
		func(snap *api.MedicationsSnapshot) []models.Medication {
			out := make([]models.Medication, 0, len(snap.Medications))
			for _, m := range snap.Medications {
				out = append(out, toMedication(m))
			}
			return out
		},
		deliver)
}

func (s *GRPCClient) WatchLogs(ctx context.Context, deliver func([]models.LogEntry)) error {
	return watch(ctx, s,
		func(ctx context.Context) (grpc.ServerStreamingClient[api.LogsSnapshot], error) {
			return s.client.WatchLogs(ctx, &api.WatchRequest{})
		},
		func(snap *api.LogsSnapshot) []models.LogEntry {
			out := make([]models.LogEntry, 0, len(snap.Logs))
			for _, l := range snap.Logs {
				out = append(out, toLogEntry(l))
			}
			return out
		},
		deliver)
}

func (s *GRPCClient) WatchGuardians(ctx context.Context, deliver func([]models.Guardian)) error {
	return watch(ctx, s,
		func(ctx context.Context) (grpc.ServerStreamingClient[api.GuardiansSnapshot], error) {
			return s.client.WatchGuardians(ctx, &api.WatchRequest{})
		},
		func(snap *api.GuardiansSnapshot) []models.Guardian {
			out := make([]models.Guardian, 0, len(snap.Guardians))
			for _, g := range snap.Guardians {
				out = append(out, toGuardian(g))
			}
			return out
		},
		deliver)
}
