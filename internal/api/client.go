package api

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
)

// MedTrackClient is the client view of the MedTrack service.
type MedTrackClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*Session, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error)
	StartPhoneSignIn(ctx context.Context, in *StartPhoneSignInRequest, opts ...grpc.CallOption) (*StartPhoneSignInResponse, error)
	ConfirmPhoneSignIn(ctx context.Context, in *ConfirmPhoneSignInRequest, opts ...grpc.CallOption) (*Session, error)
	StartFederatedSignIn(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StartFederatedSignInResponse, error)
	GetRedirectResult(ctx context.Context, in *GetRedirectResultRequest, opts ...grpc.CallOption) (*Session, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	SendPasswordReset(ctx context.Context, in *SendPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error)

	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error)
	GetCurrentUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*User, error)
	SendVerificationEmail(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*User, error)

	AddMedication(ctx context.Context, in *Medication, opts ...grpc.CallOption) (*Medication, error)
	UpdateMedication(ctx context.Context, in *Medication, opts ...grpc.CallOption) (*Medication, error)
	DeleteMedication(ctx context.Context, in *DeleteMedicationRequest, opts ...grpc.CallOption) (*Empty, error)
	AddLog(ctx context.Context, in *LogEntry, opts ...grpc.CallOption) (*LogEntry, error)
	AddGuardian(ctx context.Context, in *AddGuardianRequest, opts ...grpc.CallOption) (*Guardian, error)

	CreateUploadURL(ctx context.Context, in *CreateUploadURLRequest, opts ...grpc.CallOption) (*CreateUploadURLResponse, error)
	GetDownloadURL(ctx context.Context, in *GetDownloadURLRequest, opts ...grpc.CallOption) (*GetDownloadURLResponse, error)
	DeleteObject(ctx context.Context, in *DeleteObjectRequest, opts ...grpc.CallOption) (*Empty, error)

	RequestInsights(ctx context.Context, in *RequestInsightsRequest, opts ...grpc.CallOption) (*RequestInsightsResponse, error)

	WatchMedications(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[MedicationsSnapshot], error)
	WatchLogs(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[LogsSnapshot], error)
	WatchGuardians(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[GuardiansSnapshot], error)
}

type medTrackClient struct {
	cc grpc.ClientConnInterface
}

// NewMedTrackClient returns a client that always speaks the JSON codec.
func NewMedTrackClient(cc grpc.ClientConnInterface) MedTrackClient {
	return &medTrackClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Req, Res any](ctx context.Context, cc grpc.ClientConnInterface, name string, in *Req, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func watch[Res any](ctx context.Context, cc grpc.ClientConnInterface, idx int, in *WatchRequest, opts []grpc.CallOption) (grpc.ServerStreamingClient[Res], error) {
	desc := &ServiceDesc.Streams[idx]
	stream, err := cc.NewStream(ctx, desc, FullMethod(desc.StreamName), withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, Res]{ClientStream: stream}
	// io.EOF means the server already ended the stream; Recv reports why.
	if err := x.ClientStream.SendMsg(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *medTrackClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *medTrackClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[RegisterRequest, Session](ctx, c.cc, MethodRegister, in, opts)
}

func (c *medTrackClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[SignInRequest, Session](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *medTrackClient) StartPhoneSignIn(ctx context.Context, in *StartPhoneSignInRequest, opts ...grpc.CallOption) (*StartPhoneSignInResponse, error) {
	return invoke[StartPhoneSignInRequest, StartPhoneSignInResponse](ctx, c.cc, MethodStartPhoneSignIn, in, opts)
}

func (c *medTrackClient) ConfirmPhoneSignIn(ctx context.Context, in *ConfirmPhoneSignInRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[ConfirmPhoneSignInRequest, Session](ctx, c.cc, MethodConfirmPhoneSignIn, in, opts)
}

func (c *medTrackClient) StartFederatedSignIn(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StartFederatedSignInResponse, error) {
	return invoke[Empty, StartFederatedSignInResponse](ctx, c.cc, MethodStartFederatedSignIn, in, opts)
}

func (c *medTrackClient) GetRedirectResult(ctx context.Context, in *GetRedirectResultRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[GetRedirectResultRequest, Session](ctx, c.cc, MethodGetRedirectResult, in, opts)
}

func (c *medTrackClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenRequest, RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *medTrackClient) SendPasswordReset(ctx context.Context, in *SendPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[SendPasswordResetRequest, Empty](ctx, c.cc, MethodSendPasswordReset, in, opts)
}

func (c *medTrackClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[SignOutRequest, Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *medTrackClient) GetCurrentUser(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*User, error) {
	return invoke[Empty, User](ctx, c.cc, MethodGetCurrentUser, in, opts)
}

func (c *medTrackClient) SendVerificationEmail(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty, Empty](ctx, c.cc, MethodSendVerificationEmail, in, opts)
}

func (c *medTrackClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[ChangePasswordRequest, Empty](ctx, c.cc, MethodChangePassword, in, opts)
}

func (c *medTrackClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[UpdateProfileRequest, User](ctx, c.cc, MethodUpdateProfile, in, opts)
}

func (c *medTrackClient) AddMedication(ctx context.Context, in *Medication, opts ...grpc.CallOption) (*Medication, error) {
	return invoke[Medication, Medication](ctx, c.cc, MethodAddMedication, in, opts)
}

func (c *medTrackClient) UpdateMedication(ctx context.Context, in *Medication, opts ...grpc.CallOption) (*Medication, error) {
	return invoke[Medication, Medication](ctx, c.cc, MethodUpdateMedication, in, opts)
}

func (c *medTrackClient) DeleteMedication(ctx context.Context, in *DeleteMedicationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[DeleteMedicationRequest, Empty](ctx, c.cc, MethodDeleteMedication, in, opts)
}

func (c *medTrackClient) AddLog(ctx context.Context, in *LogEntry, opts ...grpc.CallOption) (*LogEntry, error) {
	return invoke[LogEntry, LogEntry](ctx, c.cc, MethodAddLog, in, opts)
}

func (c *medTrackClient) AddGuardian(ctx context.Context, in *AddGuardianRequest, opts ...grpc.CallOption) (*Guardian, error) {
	return invoke[AddGuardianRequest, Guardian](ctx, c.cc, MethodAddGuardian, in, opts)
}

func (c *medTrackClient) CreateUploadURL(ctx context.Context, in *CreateUploadURLRequest, opts ...grpc.CallOption) (*CreateUploadURLResponse, error) {
	return invoke[CreateUploadURLRequest, CreateUploadURLResponse](ctx, c.cc, MethodCreateUploadURL, in, opts)
}

func (c *medTrackClient) GetDownloadURL(ctx context.Context, in *GetDownloadURLRequest, opts ...grpc.CallOption) (*GetDownloadURLResponse, error) {
	return invoke[GetDownloadURLRequest, GetDownloadURLResponse](ctx, c.cc, MethodGetDownloadURL, in, opts)
}

func (c *medTrackClient) DeleteObject(ctx context.Context, in *DeleteObjectRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[DeleteObjectRequest, Empty](ctx, c.cc, MethodDeleteObject, in, opts)
}

func (c *medTrackClient) RequestInsights(ctx context.Context, in *RequestInsightsRequest, opts ...grpc.CallOption) (*RequestInsightsResponse, error) {
	return invoke[RequestInsightsRequest, RequestInsightsResponse](ctx, c.cc, MethodRequestInsights, in, opts)
}

func (c *medTrackClient) WatchMedications(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[MedicationsSnapshot], error) {
	return watch[MedicationsSnapshot](ctx, c.cc, 0, in, opts)
}

func (c *medTrackClient) WatchLogs(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[LogsSnapshot], error) {
	return watch[LogsSnapshot](ctx, c.cc, 1, in, opts)
}

func (c *medTrackClient) WatchGuardians(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[GuardiansSnapshot], error) {
	return watch[GuardiansSnapshot](ctx, c.cc, 2, in, opts)
}
