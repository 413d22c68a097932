package grpc

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"google.golang.org/grpc"
)

func (s *GRPCServer) AddMedication(ctx context.Context, req *api.Medication) (*api.Medication, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.data.AddMedication(ctx, uid, fromAPIMedication(req))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodAddMedication, err)
	}
	return toAPIMedication(m), nil
}

func (s *GRPCServer) UpdateMedication(ctx context.Context, req *api.Medication) (*api.Medication, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.data.UpdateMedication(ctx, uid, fromAPIMedication(req))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodUpdateMedication, err)
	}
	return toAPIMedication(m), nil
}

func (s *GRPCServer) DeleteMedication(ctx context.Context, req *api.DeleteMedicationRequest) (*api.Empty, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.data.DeleteMedication(ctx, uid, req.ID); err != nil {
		return nil, s.toStatus(ctx, api.MethodDeleteMedication, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) AddLog(ctx context.Context, req *api.LogEntry) (*api.LogEntry, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.data.AddLog(ctx, uid, fromAPILog(req))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodAddLog, err)
	}
	return toAPILog(e), nil
}

func (s *GRPCServer) AddGuardian(ctx context.Context, req *api.AddGuardianRequest) (*api.Guardian, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.data.AddGuardian(ctx, uid, req.Email, fromAPIPermissions(req.Permissions))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodAddGuardian, err)
	}
	return toAPIGuardian(g), nil
}

func (s *GRPCServer) CreateUploadURL(ctx context.Context, req *api.CreateUploadURLRequest) (*api.CreateUploadURLResponse, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	up, down, err := s.data.CreateUploadURL(ctx, uid, req.Key, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodCreateUploadURL, err)
	}
	return &api.CreateUploadURLResponse{UploadURL: up, DownloadURL: down}, nil
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, req *api.GetDownloadURLRequest) (*api.GetDownloadURLResponse, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.data.GetDownloadURL(ctx, uid, req.Key)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodGetDownloadURL, err)
	}
	return &api.GetDownloadURLResponse{URL: url}, nil
}

func (s *GRPCServer) DeleteObject(ctx context.Context, req *api.DeleteObjectRequest) (*api.Empty, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.data.DeleteObject(ctx, uid, req.Key); err != nil {
		return nil, s.toStatus(ctx, api.MethodDeleteObject, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) RequestInsights(ctx context.Context, req *api.RequestInsightsRequest) (*api.RequestInsightsResponse, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	logs := make([]models.LogEntry, 0, len(req.Logs))
	for _, l := range req.Logs {
		logs = append(logs, *fromAPILog(l))
	}
	answer, err := s.insights.Generate(ctx, uid, req.Query, logs)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRequestInsights, err)
	}
	return &api.RequestInsightsResponse{Answer: answer}, nil
}

// WatchMedications streams the caller's full medication list on subscribe
// and after every change until the client goes away.
func (s *GRPCServer) WatchMedications(_ *api.WatchRequest, stream grpc.ServerStreamingServer[api.MedicationsSnapshot]) error {
	ctx := stream.Context()
	uid, err := userIDFrom(ctx)
	if err != nil {
		return err
	}
	err = s.data.WatchMedications(ctx, uid, func(list []models.Medication) error {
		snap := &api.MedicationsSnapshot{Medications: make([]*api.Medication, 0, len(list))}
		for i := range list {
			snap.Medications = append(snap.Medications, toAPIMedication(&list[i]))
		}
		return stream.Send(snap)
	})
	return s.toStatus(ctx, api.MethodWatchMedications, err)
}

func (s *GRPCServer) WatchLogs(_ *api.WatchRequest, stream grpc.ServerStreamingServer[api.LogsSnapshot]) error {
	ctx := stream.Context()
	uid, err := userIDFrom(ctx)
	if err != nil {
		return err
	}
	err = s.data.WatchLogs(ctx, uid, func(list []models.LogEntry) error {
		snap := &api.LogsSnapshot{Logs: make([]*api.LogEntry, 0, len(list))}
		for i := range list {
			snap.Logs = append(snap.Logs, toAPILog(&list[i]))
		}
		return stream.Send(snap)
	})
	return s.toStatus(ctx, api.MethodWatchLogs, err)
}

func (s *GRPCServer) WatchGuardians(_ *api.WatchRequest, stream grpc.ServerStreamingServer[api.GuardiansSnapshot]) error {
	ctx := stream.Context()
	uid, err := userIDFrom(ctx)
	if err != nil {
		return err
	}
	err = s.data.WatchGuardians(ctx, uid, func(list []models.Guardian) error {
		snap := &api.GuardiansSnapshot{Guardians: make([]*api.Guardian, 0, len(list))}
		for i := range list {
			snap.Guardians = append(snap.Guardians, toAPIGuardian(&list[i]))
		}
		return stream.Send(snap)
	})
	return s.toStatus(ctx, api.MethodWatchGuardians, err)
}
