package client

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/client/models"
)

func (s *GRPCClient) AddMedication(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	resp, err := s.client.AddMedication(ctx, fromMedication(m))
	if err != nil {
		return nil, mapError(err)
	}
	out := toMedication(resp)
	return &out, nil
}

func (s *GRPCClient) UpdateMedication(ctx context.Context, m *models.Medication) error {
	_, err := s.client.UpdateMedication(ctx, fromMedication(m))
	return mapError(err)
}

func (s *GRPCClient) DeleteMedication(ctx context.Context, id string) error {
	_, err := s.client.DeleteMedication(ctx, &api.DeleteMedicationRequest{ID: id})
	return mapError(err)
}

func (s *GRPCClient) AddLog(ctx context.Context, l *models.LogEntry) error {
	_, err := s.client.AddLog(ctx, fromLogEntry(l))
	return mapError(err)
}

func (s *GRPCClient) AddGuardian(ctx context.Context, email string, perms []models.Permission) (*models.Guardian, error) {
	resp, err := s.client.AddGuardian(ctx, &api.AddGuardianRequest{Email: email, Permissions: fromPermissions(perms)})
	if err != nil {
		return nil, mapError(err)
	}
	g := toGuardian(resp)
	return &g, nil
}

// CreateUploadURL returns a presigned PUT for key and the URL the object
// will be readable at.
func (s *GRPCClient) CreateUploadURL(ctx context.Context, key, contentType string) (uploadURL, downloadURL string, err error) {
	resp, err := s.client.CreateUploadURL(ctx, &api.CreateUploadURLRequest{Key: key, ContentType: contentType})
	if err != nil {
		return "", "", mapError(err)
	}
	return resp.UploadURL, resp.DownloadURL, nil
}

func (s *GRPCClient) DownloadURL(ctx context.Context, key string) (string, error) {
	resp, err := s.client.GetDownloadURL(ctx, &api.GetDownloadURLRequest{Key: key})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}

func (s *GRPCClient) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &api.DeleteObjectRequest{Key: key})
	return mapError(err)
}

func (s *GRPCClient) RequestInsights(ctx context.Context, query string, logs []models.LogEntry) (string, error) {
	req := &api.RequestInsightsRequest{Query: query, Logs: make([]*api.LogEntry, 0, len(logs))}
	for i := range logs {
		req.Logs = append(req.Logs, fromLogEntry(&logs[i]))
	}
	resp, err := s.client.RequestInsights(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	return resp.Answer, nil
}
